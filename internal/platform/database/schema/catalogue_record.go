package schema

// CatalogueRecordTable represents the 'catalogue.record' table
type CatalogueRecordTable struct {
	Table       string
	Kind        string
	CatalogueID string
	ID          string
	OwnerID     string
	Name        string
	Status      string
	Active      string
	Suspended   string
	Draft       string
	Published   string
	Version     string
	Document    string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogueRecord is the schema definition for catalogue.record
var CatalogueRecord = CatalogueRecordTable{
	Table:       "catalogue.record",
	Kind:        "kind",
	CatalogueID: "catalogueid",
	ID:          "id",
	OwnerID:     "ownerid",
	Name:        "name",
	Status:      "status",
	Active:      "active",
	Suspended:   "suspended",
	Draft:       "draft",
	Published:   "published",
	Version:     "version",
	Document:    "document",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogueRecordTable) Columns() []string {
	return []string{
		t.Kind, t.CatalogueID, t.ID, t.OwnerID, t.Name, t.Status, t.Active,
		t.Suspended, t.Draft, t.Published, t.Version, t.Document, t.CreatedAt, t.UpdatedAt,
	}
}
