package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgrammeAdministratorRole is the role name held in admin_defined_role_programmes
const ProgrammeAdministratorRole = "programme_administrator"

// Programme is an umbrella over several projects
type Programme struct {
	ID                        uint      `gorm:"primaryKey" json:"id"`
	Title                     string    `gorm:"column:title;not null" json:"title" validate:"required"`
	Description               string    `gorm:"column:description" json:"description"`
	WebPage                   string    `gorm:"column:web_page" json:"web_page"`
	FundingDetails            string    `gorm:"column:funding_details" json:"funding_details"`
	UUID                      string    `gorm:"column:uuid" json:"uuid"`
	AvatarID                  *uint     `gorm:"column:avatar_id" json:"avatar_id"`
	FirstLetter               string    `gorm:"column:first_letter" json:"first_letter"`
	IsActivated               bool      `gorm:"column:is_activated" json:"is_activated"`
	ActivationRejectionReason *string   `gorm:"column:activation_rejection_reason" json:"activation_rejection_reason"`
	Projects                  []Project `gorm:"foreignKey:ProgrammeID" json:"-"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`

	// AdministratorIDs, when non nil, replaces the programme's administrators on save
	AdministratorIDs []uint `gorm:"-" json:"-"`
}

func (Programme) TableName() string {
	return "programmes"
}

func (p *Programme) ItemType() string  { return "Programme" }
func (p *Programme) ItemID() uint      { return p.ID }
func (p *Programme) ItemTitle() string { return p.Title }

// AdminDefinedRoleProgramme grants a person a role over a programme
type AdminDefinedRoleProgramme struct {
	ID          uint   `gorm:"primaryKey"`
	PersonID    uint   `gorm:"column:person_id;not null"`
	ProgrammeID uint   `gorm:"column:programme_id;not null"`
	Role        string `gorm:"column:role;not null"`
}

func (AdminDefinedRoleProgramme) TableName() string {
	return "admin_defined_role_programmes"
}

// IsNewRecord reports whether the programme has been saved
func (p *Programme) IsNewRecord() bool {
	return p.ID == 0
}

// IsRejected is true when activation was refused with a reason
func (p *Programme) IsRejected() bool {
	return !(p.ActivationRejectionReason == nil || p.IsActivated)
}

// CanActivate is true for admins while the programme is not yet active
func (p *Programme) CanActivate(user *User) bool {
	return user != nil && user.IsAdmin && !p.IsActivated
}

// Activate marks the programme active and clears any rejection reason. It
// reports whether anything changed.
func (p *Programme) Activate(user *User) bool {
	if !p.CanActivate(user) {
		return false
	}
	p.IsActivated = true
	p.ActivationRejectionReason = nil
	return true
}

// Reject records why activation was refused
func (p *Programme) Reject(user *User, reason string) bool {
	if !p.CanActivate(user) {
		return false
	}
	p.ActivationRejectionReason = &reason
	return true
}

// Validate checks presence and uniqueness of the title
func (p *Programme) Validate(tx *gorm.DB) error {
	errs := validateStruct(p, map[string]string{
		"Title": "Title can't be blank",
	})
	if p.Title != "" && tx != nil {
		var count int64
		q := tx.Session(&gorm.Session{NewDB: true}).Model(&Programme{}).Where("title = ?", p.Title)
		if p.ID != 0 {
			q = q.Where("id <> ?", p.ID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			errs.Add("title", "Title has already been taken")
		}
	}
	return errs.Err()
}

func (p *Programme) BeforeSave(tx *gorm.DB) error {
	if err := p.Validate(tx); err != nil {
		return err
	}
	p.FirstLetter = firstLetter(p.Title)
	return nil
}

// BeforeCreate activates programmes created by admins, or without a user
// (seeding, CLI). Programmes created by other users wait for an admin.
func (p *Programme) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	user := CurrentUser(tx.Statement.Context)
	p.IsActivated = user == nil || user.IsAdmin
	return nil
}

// AfterSave reconciles the administrator role rows with AdministratorIDs
func (p *Programme) AfterSave(tx *gorm.DB) error {
	if p.AdministratorIDs == nil {
		return nil
	}
	db := tx.Session(&gorm.Session{NewDB: true})

	var current []uint
	if err := db.Model(&AdminDefinedRoleProgramme{}).
		Where("programme_id = ? AND role = ?", p.ID, ProgrammeAdministratorRole).
		Pluck("person_id", &current).Error; err != nil {
		return err
	}

	wanted := make(map[uint]bool, len(p.AdministratorIDs))
	for _, id := range p.AdministratorIDs {
		wanted[id] = true
	}
	have := make(map[uint]bool, len(current))
	var remove []uint
	for _, id := range current {
		have[id] = true
		if !wanted[id] {
			remove = append(remove, id)
		}
	}

	if len(remove) > 0 {
		if err := db.Where("programme_id = ? AND role = ? AND person_id IN ?", p.ID, ProgrammeAdministratorRole, remove).
			Delete(&AdminDefinedRoleProgramme{}).Error; err != nil {
			return err
		}
	}
	for _, id := range p.AdministratorIDs {
		if have[id] {
			continue
		}
		row := AdminDefinedRoleProgramme{PersonID: id, ProgrammeID: p.ID, Role: ProgrammeAdministratorRole}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// BeforeDelete detaches the programme's projects
func (p *Programme) BeforeDelete(tx *gorm.DB) error {
	db := tx.Session(&gorm.Session{NewDB: true})
	if err := db.Model(&Project{}).Where("programme_id = ?", p.ID).Update("programme_id", nil).Error; err != nil {
		return err
	}
	return db.Where("programme_id = ?", p.ID).Delete(&AdminDefinedRoleProgramme{}).Error
}

func firstLetter(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(title)[0]))
}

// IsAdministrator is true when the user's profile holds the programme
// administrator role. AdministratorIDs must be loaded.
func (p *Programme) IsAdministrator(user *User) bool {
	if !user.IsRegistered() {
		return false
	}
	for _, id := range p.AdministratorIDs {
		if id == *user.PersonID {
			return true
		}
	}
	return false
}

// CanManage is true for admins and programme administrators
func (p *Programme) CanManage(user *User) bool {
	return user != nil && (user.IsAdmin || p.IsAdministrator(user))
}

// CanEdit is true for unsaved programmes and for managers
func (p *Programme) CanEdit(user *User) bool {
	return p.IsNewRecord() || p.CanManage(user)
}

// CanDelete is true for admins only
func (p *Programme) CanDelete(user *User) bool {
	return user != nil && user.IsAdmin
}

// CanCreateProgramme reports whether user may create a programme. Admins
// always can; other registered users only when the site allows it.
func CanCreateProgramme(user *User, programmesEnabled, allowUserCreation bool) bool {
	if !programmesEnabled || user == nil {
		return false
	}
	return user.IsAdmin || (user.IsRegistered() && allowUserCreation)
}
