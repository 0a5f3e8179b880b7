package db

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Seed is a YAML description of the people, institutions, projects and
// programmes of a fresh installation
type Seed struct {
	Programmes   []SeedProgramme   `yaml:"programmes"`
	Institutions []SeedInstitution `yaml:"institutions"`
	Projects     []SeedProject     `yaml:"projects"`
	People       []SeedPerson      `yaml:"people"`
}

type SeedProgramme struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	WebPage     string `yaml:"web_page"`
	// Administrators are the emails of seeded people
	Administrators []string `yaml:"administrators"`
}

type SeedInstitution struct {
	Title   string `yaml:"title"`
	City    string `yaml:"city"`
	Country string `yaml:"country"`
	WebPage string `yaml:"web_page"`
}

type SeedProject struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	WebPage     string `yaml:"web_page"`
	Programme   string `yaml:"programme"`
}

// SeedPerson is a profile, with a login account when Login is set
type SeedPerson struct {
	FirstName   string           `yaml:"first_name"`
	LastName    string           `yaml:"last_name"`
	Email       string           `yaml:"email"`
	Login       string           `yaml:"login"`
	Password    string           `yaml:"password"`
	Admin       bool             `yaml:"admin"`
	Memberships []SeedMembership `yaml:"memberships"`
}

// SeedMembership refers to a project and an institution by title
type SeedMembership struct {
	Project     string   `yaml:"project"`
	Institution string   `yaml:"institution"`
	Roles       []string `yaml:"roles"`
}

// SeedResult counts the rows a load created. Rows that already existed
// are not counted.
type SeedResult struct {
	Programmes   int
	Institutions int
	Projects     int
	WorkGroups   int
	People       int
	Users        int
	Memberships  int
}

// ParseSeed decodes and validates a seed file. Unknown keys are errors.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks that titles are present and unique and that every
// reference names something defined in the same file
func (s *Seed) Validate() error {
	var errs []error

	programmes, dups := titles(lo.Map(s.Programmes, func(p SeedProgramme, _ int) string { return p.Title }))
	errs = append(errs, blankOrDuplicate("programme", dups)...)
	institutions, dups := titles(lo.Map(s.Institutions, func(i SeedInstitution, _ int) string { return i.Title }))
	errs = append(errs, blankOrDuplicate("institution", dups)...)
	projects, dups := titles(lo.Map(s.Projects, func(p SeedProject, _ int) string { return p.Title }))
	errs = append(errs, blankOrDuplicate("project", dups)...)

	for _, p := range s.Projects {
		if p.Programme != "" && !programmes[p.Programme] {
			errs = append(errs, fmt.Errorf("project %q: unknown programme %q", p.Title, p.Programme))
		}
	}

	emails := map[string]bool{}
	logins := map[string]bool{}
	for i, p := range s.People {
		name := p.Email
		if strings.TrimSpace(p.Email) == "" {
			name = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Errorf("person %s: email is required", name))
		} else if emails[p.Email] {
			errs = append(errs, fmt.Errorf("person %s: duplicate email", name))
		}
		emails[p.Email] = true

		if p.Login != "" {
			if logins[p.Login] {
				errs = append(errs, fmt.Errorf("person %s: duplicate login %q", name, p.Login))
			}
			logins[p.Login] = true
			if p.Password == "" {
				errs = append(errs, fmt.Errorf("person %s: a login needs a password", name))
			}
		}
		for _, m := range p.Memberships {
			if !projects[m.Project] {
				errs = append(errs, fmt.Errorf("person %s: unknown project %q", name, m.Project))
			}
			if !institutions[m.Institution] {
				errs = append(errs, fmt.Errorf("person %s: unknown institution %q", name, m.Institution))
			}
		}
	}

	for _, p := range s.Programmes {
		for _, email := range p.Administrators {
			if !emails[email] {
				errs = append(errs, fmt.Errorf("programme %q: unknown administrator %q", p.Title, email))
			}
		}
	}
	return errors.Join(errs...)
}

func titles(list []string) (map[string]bool, []string) {
	seen := make(map[string]bool, len(list))
	var bad []string
	for _, t := range list {
		if strings.TrimSpace(t) == "" || seen[t] {
			bad = append(bad, t)
		}
		seen[t] = true
	}
	return seen, bad
}

func blankOrDuplicate(kind string, bad []string) []error {
	return lo.Map(bad, func(t string, _ int) error {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%s title is required", kind)
		}
		return fmt.Errorf("duplicate %s %q", kind, t)
	})
}

// LoadSeed creates whatever the seed describes that does not exist yet,
// matching rows by title, email and login. It runs in one transaction.
func LoadSeed(db *gorm.DB, seed *Seed) (*SeedResult, error) {
	result := &SeedResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		people := map[string]uint{}
		for _, sp := range seed.People {
			person := model.Person{Email: sp.Email}
			res := tx.Where(model.Person{Email: sp.Email}).
				Attrs(model.Person{FirstName: sp.FirstName, LastName: sp.LastName}).
				FirstOrCreate(&person)
			if res.Error != nil {
				return fmt.Errorf("person %s: %w", sp.Email, res.Error)
			}
			result.People += int(res.RowsAffected)
			people[sp.Email] = person.ID

			if sp.Login == "" {
				continue
			}
			created, err := seedUser(tx, sp, person.ID)
			if err != nil {
				return fmt.Errorf("user %s: %w", sp.Login, err)
			}
			if created {
				result.Users++
			}
		}

		programmes := map[string]uint{}
		for _, sp := range seed.Programmes {
			programme := model.Programme{}
			res := tx.Where(model.Programme{Title: sp.Title}).Limit(1).Find(&programme)
			if res.Error != nil {
				return fmt.Errorf("programme %q: %w", sp.Title, res.Error)
			}
			if res.RowsAffected == 0 {
				programme = model.Programme{
					Title:       sp.Title,
					Description: sp.Description,
					WebPage:     sp.WebPage,
					AdministratorIDs: lo.Map(sp.Administrators, func(email string, _ int) uint {
						return people[email]
					}),
				}
				if err := tx.Create(&programme).Error; err != nil {
					return fmt.Errorf("programme %q: %w", sp.Title, err)
				}
				result.Programmes++
			}
			programmes[sp.Title] = programme.ID
		}

		institutions := map[string]uint{}
		for _, si := range seed.Institutions {
			institution := model.Institution{}
			res := tx.Where(model.Institution{Title: si.Title}).
				Attrs(model.Institution{City: si.City, Country: si.Country, WebPage: si.WebPage}).
				FirstOrCreate(&institution)
			if res.Error != nil {
				return fmt.Errorf("institution %q: %w", si.Title, res.Error)
			}
			result.Institutions += int(res.RowsAffected)
			institutions[si.Title] = institution.ID
		}

		projects := map[string]uint{}
		for _, sp := range seed.Projects {
			attrs := model.Project{Description: sp.Description, WebPage: sp.WebPage}
			if sp.Programme != "" {
				id := programmes[sp.Programme]
				attrs.ProgrammeID = &id
			}
			project := model.Project{}
			res := tx.Where(model.Project{Title: sp.Title}).Attrs(attrs).FirstOrCreate(&project)
			if res.Error != nil {
				return fmt.Errorf("project %q: %w", sp.Title, res.Error)
			}
			result.Projects += int(res.RowsAffected)
			projects[sp.Title] = project.ID
		}

		for _, sp := range seed.People {
			for _, sm := range sp.Memberships {
				wg := model.WorkGroup{}
				res := tx.Where(model.WorkGroup{ProjectID: projects[sm.Project], InstitutionID: institutions[sm.Institution]}).
					FirstOrCreate(&wg)
				if res.Error != nil {
					return fmt.Errorf("work group %s/%s: %w", sm.Project, sm.Institution, res.Error)
				}
				result.WorkGroups += int(res.RowsAffected)

				created, err := seedMembership(tx, people[sp.Email], wg.ID, sm.Roles)
				if err != nil {
					return fmt.Errorf("membership of %s in %s: %w", sp.Email, sm.Project, err)
				}
				if created {
					result.Memberships++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func seedUser(tx *gorm.DB, sp SeedPerson, personID uint) (bool, error) {
	var count int64
	if err := tx.Model(&model.User{}).Where("login = ?", sp.Login).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	user := model.User{Login: sp.Login, Email: sp.Email, PersonID: &personID, IsAdmin: sp.Admin}
	if err := user.SetPassword(sp.Password); err != nil {
		return false, err
	}
	return true, tx.Create(&user).Error
}

func seedMembership(tx *gorm.DB, personID, workGroupID uint, roleNames []string) (bool, error) {
	var count int64
	if err := tx.Model(&model.GroupMembership{}).
		Where("person_id = ? AND work_group_id = ?", personID, workGroupID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	var roles []model.ProjectRole
	if len(roleNames) > 0 {
		if err := tx.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			return false, err
		}
		found := lo.Map(roles, func(r model.ProjectRole, _ int) string { return r.Name })
		if missing, _ := lo.Difference(lo.Uniq(roleNames), found); len(missing) > 0 {
			return false, fmt.Errorf("unknown project roles %v", missing)
		}
	}

	m := model.GroupMembership{PersonID: &personID, WorkGroupID: workGroupID, ProjectRoles: roles}
	return true, tx.Create(&m).Error
}
