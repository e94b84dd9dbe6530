package database

// SampleRow maps one row of the density table. Size-class columns may be NULL.
type SampleRow struct {
	ID          uint     `gorm:"column:id;primaryKey"`
	Material    string   `gorm:"column:material"`
	MaterialAge float64  `gorm:"column:material_age"`
	Total       float64  `gorm:"column:total"`
	Legal       *float64 `gorm:"column:legal"`
	Sublegal    *float64 `gorm:"column:sublegal"`
	Spat        *float64 `gorm:"column:spat"`
	SiteName    string   `gorm:"column:site_name"`
	Year        int      `gorm:"column:year"`
}
