package entity

import (
	"fmt"
	"strings"
	"time"
)

// NotAvailable fills optional address parts left blank by the user
const NotAvailable = "NA"

// PersonalData holds the tier-2 details of a user
type PersonalData struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Address    string    `gorm:"size:255;not null;default:''" json:"address"`
	Number     string    `gorm:"size:20;not null;default:'NA'" json:"number"`
	Floor      string    `gorm:"size:20;not null;default:'NA'" json:"floor"`
	Door       string    `gorm:"size:20;not null;default:'NA'" json:"door"`
	Notes      string    `gorm:"size:500;not null;default:'NA'" json:"notes"`
	ZipCode1   string    `gorm:"size:4;not null;default:''" json:"zip_code1"`
	ZipCode2   string    `gorm:"size:3;not null;default:''" json:"zip_code2"`
	CellNumber string    `gorm:"size:9;not null;uniqueIndex" json:"cell_phone"`
	NIF        string    `gorm:"column:nfiscal;size:9;not null;uniqueIndex" json:"nfiscal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName sets the GORM table name
func (PersonalData) TableName() string {
	return "personal"
}

// FullAddress composes "street, number, floor door", leaving out parts set to NA
func (p *PersonalData) FullAddress() string {
	addr := strings.TrimSpace(p.Address)
	if v := strings.TrimSpace(p.Number); v != "" && v != NotAvailable {
		addr += ", " + v
	}
	if v := strings.TrimSpace(p.Floor); v != "" && v != NotAvailable {
		addr += ", " + v
	}
	if v := strings.TrimSpace(p.Door); v != "" && v != NotAvailable {
		addr += " " + v
	}
	return addr
}

// ZipCode joins both parts of the postal code as "1000-001"
func (p *PersonalData) ZipCode() string {
	return fmt.Sprintf("%s-%s", p.ZipCode1, p.ZipCode2)
}
