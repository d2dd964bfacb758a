package model

import "time"

// SettingActiveQuizID is the app_settings key holding the current quiz pointer.
const SettingActiveQuizID = "active_quiz_id"

// AppSetting represents a key-value pair for global application state.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
