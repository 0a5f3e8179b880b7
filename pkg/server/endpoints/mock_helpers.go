package endpoints

import (
	"database/sql"
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
)

// NewMockTestServer creates a server instance with a mocked database for
// unit testing. The gorm stores talk to sqlmock; tests swap in mock stores
// for anything they do not want to express as SQL.
func NewMockTestServer(cfg *config.SeekConfig) (*server.Server, sqlmock.Sqlmock, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	m, err := NewMockDB()
	if err != nil {
		return nil, nil, err
	}
	s := server.NewServer(cfg, m.GormDB, "127.0.0.1", "0")
	return s, m.Mock, nil
}

// MockDB wraps sqlmock for easier test setup
type MockDB struct {
	DB     *sql.DB
	Mock   sqlmock.Sqlmock
	GormDB *gorm.DB
}

// NewMockDB creates a new mock database connection
func NewMockDB() (*MockDB, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &MockDB{
		DB:     db,
		Mock:   mock,
		GormDB: gormDB,
	}, nil
}

// Close closes the mock database
func (m *MockDB) Close() error {
	return m.DB.Close()
}

// ExpectUserByID sets up expectation for the session user lookup
func (m *MockDB) ExpectUserByID(id uint, login string, personID *uint, admin bool) {
	rows := sqlmock.NewRows([]string{"id", "login", "person_id", "is_admin"}).
		AddRow(id, login, personID, admin)
	m.Mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnRows(rows)
}

// ExpectUserNotFound sets up expectation for a missing user
func (m *MockDB) ExpectUserNotFound() {
	m.Mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnError(gorm.ErrRecordNotFound)
}

// ExpectConnectivityCheck sets up expectation for the health check query
func (m *MockDB) ExpectConnectivityCheck(err error) {
	e := m.Mock.ExpectExec(`SELECT 1`)
	if err != nil {
		e.WillReturnError(err)
		return
	}
	e.WillReturnResult(sqlmock.NewResult(0, 0))
}

// ExpectCount sets up expectation for a row count of table
func (m *MockDB) ExpectCount(table string, n int64) {
	m.Mock.ExpectQuery(`SELECT count\(\*\) FROM "` + regexp.QuoteMeta(table) + `"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
}

// ExpectBeginCommit sets up expectation for transaction begin and commit
func (m *MockDB) ExpectBeginCommit() {
	m.Mock.ExpectBegin()
	m.Mock.ExpectCommit()
}

// ExpectBeginRollback sets up expectation for transaction begin and rollback
func (m *MockDB) ExpectBeginRollback() {
	m.Mock.ExpectBegin()
	m.Mock.ExpectRollback()
}

// VerifyExpectations checks that all expectations were met
func (m *MockDB) VerifyExpectations() error {
	return m.Mock.ExpectationsWereMet()
}
