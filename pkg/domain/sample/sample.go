package sample

import (
	"time"

	"github.com/google/uuid"
)

// LabeledSample is one benchmark trajectory step together with the teacher
// model's parsed verdict. Teacher fields are pointers: nil means the
// teacher's output could not be parsed and the sample is excluded from
// training and evaluation, never defaulted.
type LabeledSample struct {
	ID                 uuid.UUID `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	Dataset            string    `json:"dataset" gorm:"column:dataset;index"`
	SourceFile         string    `json:"source_file" gorm:"column:source_file"`
	Index              int       `json:"index" gorm:"column:sample_index"`
	Instruction        string    `json:"instruction" gorm:"column:instruction"`
	History            string    `json:"history" gorm:"column:history"`
	CurrentAction      string    `json:"current_action" gorm:"column:current_action"`
	EnvInfo            string    `json:"env_info" gorm:"column:env_info"`
	GroundTruth        float64   `json:"ground_truth" gorm:"column:ground_truth"`
	TeacherMalicious   *string   `json:"teacher_malicious" gorm:"column:teacher_malicious"`
	TeacherAttacked    *string   `json:"teacher_attacked" gorm:"column:teacher_attacked"`
	TeacherHarmfulness *float64  `json:"teacher_harmfulness" gorm:"column:teacher_harmfulness"`
	TeacherComposite   *float64  `json:"teacher_composite" gorm:"column:teacher_composite"`
	TeacherRaw         string    `json:"teacher_raw,omitempty" gorm:"column:teacher_raw"`
	ParseSuccess       bool      `json:"parse_success" gorm:"column:parse_success"`
	CreatedAt          time.Time `json:"created_at" gorm:"column:created_at"`
}

func (LabeledSample) TableName() string {
	return "labeled_samples"
}
