package authz

import (
	"testing"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func policy(scope model.SharingScope, access model.AccessType, perms ...model.Permission) *model.Policy {
	return &model.Policy{SharingScope: scope, AccessType: access, Permissions: perms}
}

func TestActionRequiredAccess(t *testing.T) {
	assert.Equal(t, model.AccessTypeView, ActionView.RequiredAccess())
	assert.Equal(t, model.AccessTypeDownload, ActionDownload.RequiredAccess())
	assert.Equal(t, model.AccessTypeEdit, ActionEdit.RequiredAccess())
	assert.Equal(t, model.AccessTypeManage, ActionManage.RequiredAccess())
	assert.Equal(t, model.AccessTypeManage, ActionDelete.RequiredAccess())
}

func TestAccessLevel(t *testing.T) {
	member := Subject{UserID: 2, PersonID: uintPtr(20), ProjectIDs: []uint{5}, InstitutionIDs: []uint{7}, ProgrammeIDs: []uint{9}}
	stranger := Subject{UserID: 3, PersonID: uintPtr(30)}
	admin := Subject{UserID: 1, PersonID: uintPtr(10), IsAdmin: true}

	tests := []struct {
		name    string
		subject Subject
		target  Target
		want    model.AccessType
	}{
		{
			name:    "contributor manages a private item",
			subject: member,
			target:  Target{ContributorID: uintPtr(20), Policy: policy(model.SharingScopePrivate, model.AccessTypeNoAccess)},
			want:    model.AccessTypeManage,
		},
		{
			name:    "creator manages",
			subject: stranger,
			target:  Target{ContributorID: uintPtr(20), CreatorIDs: []uint{30}},
			want:    model.AccessTypeManage,
		},
		{
			name:    "no policy means private",
			subject: member,
			target:  Target{ContributorID: uintPtr(99)},
			want:    model.AccessTypeNoAccess,
		},
		{
			name:    "admins are ordinary users on assets",
			subject: admin,
			target:  Target{ContributorID: uintPtr(20), Policy: policy(model.SharingScopePrivate, model.AccessTypeNoAccess)},
			want:    model.AccessTypeNoAccess,
		},
		{
			name:    "everyone scope applies to anonymous",
			subject: Anonymous,
			target:  Target{Policy: policy(model.SharingScopeEveryone, model.AccessTypeDownload)},
			want:    model.AccessTypeDownload,
		},
		{
			name:    "all users scope skips anonymous",
			subject: Anonymous,
			target:  Target{Policy: policy(model.SharingScopeAllUsers, model.AccessTypeView)},
			want:    model.AccessTypeNoAccess,
		},
		{
			name:    "all users scope applies to logged in",
			subject: stranger,
			target:  Target{Policy: policy(model.SharingScopeAllUsers, model.AccessTypeView)},
			want:    model.AccessTypeView,
		},
		{
			name:    "private scope ignores access type",
			subject: stranger,
			target:  Target{Policy: policy(model.SharingScopePrivate, model.AccessTypeEdit)},
			want:    model.AccessTypeNoAccess,
		},
		{
			name:    "person permission",
			subject: stranger,
			target: Target{Policy: policy(model.SharingScopePrivate, model.AccessTypeNoAccess,
				model.Permission{ContributorType: model.ContributorPerson, ContributorID: 30, AccessType: model.AccessTypeEdit})},
			want: model.AccessTypeEdit,
		},
		{
			name:    "highest of project, institution and programme permissions",
			subject: member,
			target: Target{Policy: policy(model.SharingScopeEveryone, model.AccessTypeView,
				model.Permission{ContributorType: model.ContributorProject, ContributorID: 5, AccessType: model.AccessTypeDownload},
				model.Permission{ContributorType: model.ContributorInstitution, ContributorID: 7, AccessType: model.AccessTypeEdit},
				model.Permission{ContributorType: model.ContributorProgramme, ContributorID: 9, AccessType: model.AccessTypeDownload})},
			want: model.AccessTypeEdit,
		},
		{
			name:    "permissions of other groups do not apply",
			subject: member,
			target: Target{Policy: policy(model.SharingScopePrivate, model.AccessTypeNoAccess,
				model.Permission{ContributorType: model.ContributorProject, ContributorID: 6, AccessType: model.AccessTypeManage})},
			want: model.AccessTypeNoAccess,
		},
		{
			name:    "anonymous never holds a person permission",
			subject: Anonymous,
			target: Target{Policy: policy(model.SharingScopePrivate, model.AccessTypeNoAccess,
				model.Permission{ContributorType: model.ContributorPerson, ContributorID: 0, AccessType: model.AccessTypeManage})},
			want: model.AccessTypeNoAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccessLevel(tt.subject, tt.target))
		})
	}
}

func TestCanAndLookup(t *testing.T) {
	target := Target{ItemType: "Sample", ItemID: 4, Policy: policy(model.SharingScopeEveryone, model.AccessTypeDownload)}

	assert.True(t, Can(Anonymous, target, ActionView))
	assert.True(t, Can(Anonymous, target, ActionDownload))
	assert.False(t, Can(Anonymous, target, ActionEdit))
	assert.False(t, Can(Anonymous, target, ActionDelete))

	l := NewLookup(Anonymous, target)
	assert.Equal(t, uint(0), l.UserID)
	assert.Equal(t, "Sample", l.AssetType)
	assert.Equal(t, uint(4), l.AssetID)
	assert.True(t, l.CanView)
	assert.True(t, l.CanDownload)
	assert.False(t, l.CanEdit)
	assert.False(t, l.CanManage)
	assert.False(t, l.CanDelete)

	for _, action := range Actions {
		assert.Equal(t, Can(Anonymous, target, action), Allows(&l, action), action)
	}
	assert.False(t, Allows(&l, Action("publish")))
}
