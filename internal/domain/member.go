package domain

import "time"

// Member is a community member. Rows created on approval carry no Slack identity
// until the person completes their first login.
type Member struct {
	ID               uint         `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt        time.Time    `gorm:"column:created_at" json:"created_at"`
	Active           bool         `gorm:"column:active;not null;default:false" json:"active"`
	SlackID          *string      `gorm:"column:slack_id;uniqueIndex" json:"slack_id"`
	SlackAccessToken *string      `gorm:"column:slack_access_token" json:"-"`
	SlackTeam        *string      `gorm:"column:slack_team" json:"slack_team"`
	DisplayName      string       `gorm:"column:display_name" json:"display_name"`
	ApplicationID    *uint        `gorm:"column:application_id;index" json:"application_id"`
	Application      *Application `gorm:"foreignKey:ApplicationID" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// IsAuthenticated is true once the member has a Slack identity bound to it.
func (m *Member) IsAuthenticated() bool {
	return m != nil && m.SlackID != nil && *m.SlackID != ""
}

func (m *Member) IsAnonymous() bool {
	return !m.IsAuthenticated()
}
