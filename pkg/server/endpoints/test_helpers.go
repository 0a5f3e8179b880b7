package endpoints

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
)

// TestSessionSecret signs the session tokens of test servers
const TestSessionSecret = "test-session-secret-0123456789abcdef"

// NewTestServer creates a server against dbURL with every endpoint
// registered. Searcher, Fetcher and Blobs are left for the caller.
func NewTestServer(dbURL string, cfg *config.SeekConfig) (*server.Server, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dbURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg == nil {
		cfg = config.NewDefault()
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = TestSessionSecret
	}

	s := server.NewServer(cfg, db, "127.0.0.1", "0")
	RegisterAll(s)
	return s, nil
}

// CreateTestUser creates a login account. A profile is created with it
// unless withProfile is false.
func CreateTestUser(db *gorm.DB, login, password string, admin, withProfile bool) (*model.User, error) {
	user := &model.User{Login: login, Email: login + "@example.org", IsAdmin: admin}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, db.Transaction(func(tx *gorm.DB) error {
		if withProfile {
			person := &model.Person{FirstName: login, LastName: "Tester", Email: user.Email}
			if err := tx.Create(person).Error; err != nil {
				return err
			}
			user.PersonID = &person.ID
		}
		return tx.Create(user).Error
	})
}

// CreateTestProject creates a project with a work group at a new
// institution and places the given people in it
func CreateTestProject(db *gorm.DB, title string, personIDs ...uint) (*model.Project, error) {
	project := &model.Project{Title: title}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		institution := &model.Institution{Title: title + " Institute"}
		if err := tx.Create(institution).Error; err != nil {
			return err
		}
		wg := &model.WorkGroup{ProjectID: project.ID, InstitutionID: institution.ID}
		if err := tx.Create(wg).Error; err != nil {
			return err
		}
		for _, id := range personIDs {
			personID := id
			m := &model.GroupMembership{PersonID: &personID, WorkGroupID: wg.ID}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return project, err
}

// IssueTestToken signs a session token for user
func IssueTestToken(s *server.Server, user *model.User) (string, error) {
	token, _, err := s.Sessions.Issue(user)
	return token, err
}

// CleanupTestData empties every catalog table and restarts the id sequences
func CleanupTestData(db *gorm.DB) error {
	return db.Exec(`
		DO $$
		DECLARE t text;
		BEGIN
			FOR t IN SELECT tablename FROM pg_tables
				WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
			LOOP
				EXECUTE format('TRUNCATE TABLE %I RESTART IDENTITY CASCADE', t);
			END LOOP;
		END $$;
	`).Error
}
