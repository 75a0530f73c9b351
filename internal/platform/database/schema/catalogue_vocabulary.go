package schema

// CatalogueVocabularyTable represents the 'catalogue.vocabulary' table
type CatalogueVocabularyTable struct {
	Table string
	ID    string
	Name  string
	Type  string
}

// CatalogueVocabulary is the schema definition for catalogue.vocabulary
var CatalogueVocabulary = CatalogueVocabularyTable{
	Table: "catalogue.vocabulary",
	ID:    "id",
	Name:  "name",
	Type:  "type",
}

func (t CatalogueVocabularyTable) Columns() []string {
	return []string{t.ID, t.Name, t.Type}
}
