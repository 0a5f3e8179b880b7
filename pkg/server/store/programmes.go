package store

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ProgrammeMembers are the people and institutions of a programme's projects
type ProgrammeMembers struct {
	ProjectIDs     []uint
	PersonIDs      []uint
	InstitutionIDs []uint
}

// ProgrammesStore reads and writes programmes. Loaded programmes carry
// their AdministratorIDs.
type ProgrammesStore interface {
	// ListProgrammes returns activated programmes ordered by title. With
	// includeInactive every programme is returned.
	ListProgrammes(includeInactive bool) ([]model.Programme, error)

	// AwaitingActivation lists programmes neither activated nor rejected
	AwaitingActivation() ([]model.Programme, error)

	// Rejected lists programmes whose activation was refused
	Rejected() ([]model.Programme, error)

	// Programme returns ErrNotFound for unknown ids
	Programme(id uint) (*model.Programme, error)

	// SaveProgramme creates or updates. The acting user in ctx decides
	// activation on create.
	SaveProgramme(ctx context.Context, p *model.Programme) error

	// SetProjects moves the given projects into the programme
	SetProjects(ctx context.Context, programmeID uint, projectIDs []uint) error

	DeleteProgramme(ctx context.Context, p *model.Programme) error

	// Members flattens the programme's projects into people and
	// institutions, each unique
	Members(programmeID uint) (*ProgrammeMembers, error)
}
