package domain

import "time"

// Meme represents one uploaded image plus its metadata. A Meme row is only
// created after the binary has been uploaded to object storage, so Ruta is
// always a resolvable URL. Rows are never mutated after creation.
type Meme struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Description string     `gorm:"column:descripcion;type:text;not null" json:"descripcion"`
	Ruta        string     `gorm:"type:text;not null" json:"ruta"`
	Usuario     string     `gorm:"type:text;not null;index:idx_memes_usuario" json:"usuario"`
	Width       int        `json:"width,omitempty"`
	Height      int        `json:"height,omitempty"`
	Etiquetas   []Etiqueta `gorm:"constraint:OnDelete:CASCADE" json:"etiquetas,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the database table name for Meme.
func (Meme) TableName() string {
	return "memes"
}

// Etiqueta is a classifier-derived annotation attached to a Meme. Labels are
// stored lowercase and (meme_id, etiqueta) is unique, so inserting the same
// label twice for one meme is rejected by the schema as well as the
// repository's existence check.
type Etiqueta struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	MemeID    uint    `gorm:"not null;uniqueIndex:idx_etiquetas_meme_label" json:"meme_id"`
	Etiqueta  string  `gorm:"type:text;not null;uniqueIndex:idx_etiquetas_meme_label" json:"etiqueta"`
	Confianza float64 `json:"confianza"`
}

// TableName returns the database table name for Etiqueta.
func (Etiqueta) TableName() string {
	return "etiquetas"
}
