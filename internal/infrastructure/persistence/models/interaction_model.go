package models

import (
	"strings"
	"time"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
)

// InteractionModel is the database row for one prompt exchange.
type InteractionModel struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"`
	Channel   string        `gorm:"type:varchar(16);index"`
	Prompt    string        `gorm:"type:text"`
	Response  string        `gorm:"type:text"`
	Steps     int           `gorm:"not null;default:0"`
	ToolsUsed string        `gorm:"type:text"` // comma-joined tool names
	Outcome   string        `gorm:"type:varchar(32);index"`
	Duration  time.Duration `gorm:"not null;default:0"`
	CreatedAt time.Time     `gorm:"index"`
}

// TableName sets the table name.
func (InteractionModel) TableName() string {
	return "interactions"
}

// FromEntity converts a domain interaction to its row form.
func FromEntity(in *entity.Interaction) *InteractionModel {
	return &InteractionModel{
		ID:        in.ID,
		Channel:   in.Channel,
		Prompt:    in.Prompt,
		Response:  in.Response,
		Steps:     in.Steps,
		ToolsUsed: strings.Join(in.ToolsUsed, ","),
		Outcome:   in.Outcome,
		Duration:  in.Duration,
		CreatedAt: in.CreatedAt,
	}
}

// ToEntity converts a row back to the domain form.
func (m *InteractionModel) ToEntity() *entity.Interaction {
	var tools []string
	if m.ToolsUsed != "" {
		tools = strings.Split(m.ToolsUsed, ",")
	}
	return &entity.Interaction{
		ID:        m.ID,
		Channel:   m.Channel,
		Prompt:    m.Prompt,
		Response:  m.Response,
		Steps:     m.Steps,
		ToolsUsed: tools,
		Outcome:   m.Outcome,
		Duration:  m.Duration,
		CreatedAt: m.CreatedAt,
	}
}
