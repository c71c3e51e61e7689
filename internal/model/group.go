package model

import (
	"time"

	"github.com/google/uuid"
)

type GroupRole string

const (
	RoleOwner  GroupRole = "OWNER"
	RoleAdmin  GroupRole = "ADMIN"
	RoleMember GroupRole = "MEMBER"
)

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "ACTIVE"
	MembershipPending MembershipStatus = "PENDING" // 招待中。認可には使わない
)

// Group は学習グループです。セットとリーダーボードの単位になります。
type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "study_groups"
}

type GroupMembership struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_group_user,unique"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_group_user,unique"`
	Role      GroupRole        `gorm:"type:varchar(16);not null;default:'MEMBER'"`
	Status    MembershipStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User *User `gorm:"foreignKey:UserID;references:ID"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}
