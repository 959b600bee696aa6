package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCheckOwnerOrAdmin(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		roles   []string
		userID  uuid.UUID
		ownerID uuid.UUID
		wantErr bool
	}{
		{name: "owner", roles: []string{RoleUser}, userID: owner, ownerID: owner},
		{name: "admin", roles: []string{RoleAdmin}, userID: other, ownerID: owner},
		{name: "admin without id", roles: []string{RoleAdmin}, ownerID: owner},
		{name: "not owner", roles: []string{RoleUser}, userID: other, ownerID: owner, wantErr: true},
		{name: "anonymous", userID: uuid.Nil, ownerID: owner, wantErr: true},
		{name: "no owner", roles: []string{RoleUser}, userID: other, ownerID: uuid.Nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnerOrAdmin(tt.roles, tt.userID, tt.ownerID)
			if tt.wantErr {
				assert.True(t, IsAuthorizationError(err), "error = %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckAdmin(t *testing.T) {
	assert.NoError(t, CheckAdmin([]string{RoleUser, RoleAdmin}))
	assert.True(t, IsAuthorizationError(CheckAdmin([]string{RoleUser})))
	assert.True(t, IsAuthorizationError(CheckAdmin(nil)))
}
