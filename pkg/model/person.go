package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a login account. Most users are linked to a Person.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Login           string    `gorm:"column:login;uniqueIndex;not null" json:"login"`
	Email           string    `gorm:"column:email" json:"email"`
	CryptedPassword string    `gorm:"column:crypted_password" json:"-"`
	PersonID        *uint     `gorm:"column:person_id" json:"person_id"`
	IsAdmin         bool      `gorm:"column:is_admin" json:"is_admin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword stores the bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.CryptedPassword = string(hash)
	return nil
}

// CheckPassword compares password with the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.CryptedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.CryptedPassword), []byte(password)) == nil
}

// IsRegistered is true once the account is linked to a profile
func (u *User) IsRegistered() bool {
	return u != nil && u.PersonID != nil
}

// Person is a researcher profile
type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Email     string    `gorm:"column:email" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Person) TableName() string {
	return "people"
}

// Name is the display name
func (p *Person) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) ItemType() string  { return "Person" }
func (p *Person) ItemID() uint      { return p.ID }
func (p *Person) ItemTitle() string { return p.Name() }

// Project groups people through work groups
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	WebPage     string    `gorm:"column:web_page" json:"web_page"`
	ProgrammeID *uint     `gorm:"column:programme_id" json:"programme_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) ItemType() string  { return "Project" }
func (p *Project) ItemID() uint      { return p.ID }
func (p *Project) ItemTitle() string { return p.Title }

// Institution is an organisation people belong to
type Institution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	City      string    `gorm:"column:city" json:"city"`
	Country   string    `gorm:"column:country" json:"country"`
	WebPage   string    `gorm:"column:web_page" json:"web_page"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Institution) TableName() string {
	return "institutions"
}

func (i *Institution) ItemType() string  { return "Institution" }
func (i *Institution) ItemID() uint      { return i.ID }
func (i *Institution) ItemTitle() string { return i.Title }

// WorkGroup pairs a project with an institution
type WorkGroup struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ProjectID     uint         `gorm:"column:project_id;not null" json:"project_id"`
	InstitutionID uint         `gorm:"column:institution_id;not null" json:"institution_id"`
	Project       *Project     `gorm:"foreignKey:ProjectID" json:"-"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (WorkGroup) TableName() string {
	return "work_groups"
}

// ProjectRole is a role a member can hold inside a project
type ProjectRole struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (ProjectRole) TableName() string {
	return "project_roles"
}
