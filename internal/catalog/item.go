package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DescriptionPlaceholder substitutes an empty description so detail views
// always have something to render below the title.
const DescriptionPlaceholder = "-"

// Item is a purchasable digital good from the catalog.
// Records are created and deactivated out-of-band; the bot only reads them.
type Item struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title" validate:"required"`
	Description string `db:"description" json:"description"`
	ImgLink     string `db:"img_link" json:"img_link" validate:"required,url"`
	DemoLink    string `db:"demo_file_link" json:"demo_file_link" validate:"required,url"`
	FullLink    string `db:"full_file_link" json:"full_file_link" validate:"required,url"`
	Price       int    `db:"price" json:"price" validate:"required,gt=0"`
	Active      bool   `db:"is_active" json:"is_active"`
}

var validate = validator.New()

// Normalize brings a freshly scanned record into a consistent shape.
func (i *Item) Normalize() {
	i.Title = strings.TrimSpace(i.Title)
	i.Description = strings.TrimSpace(i.Description)
	if i.Description == "" {
		i.Description = DescriptionPlaceholder
	}
}

// Validate reports whether the item satisfies the catalog invariants.
// A row failing validation must never reach a handler as a partial Item.
func (i Item) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("item: non-positive id %d", i.ID)
	}
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("item %d: %w", i.ID, err)
	}
	return nil
}
