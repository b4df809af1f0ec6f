// Package masterdata declares the per-entity descriptors that configure the
// generic handler/service/store set. One descriptor per entity type replaces
// the per-entity controller duplication of older builds of this product.
package masterdata

// ChildRef names a table (and the column in it) that references records of a
// module. The deletion gateway counts live rows in these before allowing a
// delete. Label is the human-readable form used in conflict messages.
type ChildRef struct {
	Table  string
	Column string
	Label  string
}

// ParentRef declares that records of a module link to a parent module.
type ParentRef struct {
	Resource string
	Required bool
}

// Descriptor configures one master-data entity type.
type Descriptor struct {
	// Resource is the URL path segment, e.g. "tax-types".
	Resource string
	// ModuleName is the human-readable label used only in user-facing
	// messages, e.g. "Tax Type".
	ModuleName string
	// Table is the PostgreSQL table backing the entity.
	Table string
	// Parent, when set, is validated on create/update.
	Parent *ParentRef
	// Children drive delete validation. Empty means nothing references this
	// entity type.
	Children []ChildRef
	// SkipDeleteValidation preserves source behavior for entities whose
	// deletes intentionally bypass the reference check (doc types, folders).
	// Flagged to product owners rather than silently unified; see DESIGN.md.
	SkipDeleteValidation bool
	// CacheList marks hot dropdown data worth serving from the redis
	// read-through cache.
	CacheList bool
}

// Registry returns the descriptors for every master-data entity this backend
// administers. Order is the mount order of the routes.
func Registry() []Descriptor {
	return []Descriptor{
		{
			Resource:   "countries",
			ModuleName: "Country",
			Table:      "md_countries",
			Children:   []ChildRef{{Table: "md_states", Column: "parent_id", Label: "states"}},
		},
		{
			Resource:   "states",
			ModuleName: "State",
			Table:      "md_states",
			Parent:     &ParentRef{Resource: "countries", Required: true},
			Children:   []ChildRef{{Table: "md_cities", Column: "parent_id", Label: "cities"}},
		},
		{
			Resource:   "cities",
			ModuleName: "City",
			Table:      "md_cities",
			Parent:     &ParentRef{Resource: "states", Required: true},
		},
		{
			Resource:   "tax-categories",
			ModuleName: "Tax Category",
			Table:      "md_tax_categories",
			Children:   []ChildRef{{Table: "md_tax_types", Column: "parent_id", Label: "tax types"}},
		},
		{
			Resource:   "tax-types",
			ModuleName: "Tax Type",
			Table:      "md_tax_types",
			Parent:     &ParentRef{Resource: "tax-categories", Required: false},
			Children:   []ChildRef{{Table: "md_tax_rates", Column: "parent_id", Label: "tax rates"}},
		},
		{
			Resource:   "tax-rates",
			ModuleName: "Tax Rate",
			Table:      "md_tax_rates",
			Parent:     &ParentRef{Resource: "tax-types", Required: true},
		},
		{
			Resource:   "departments",
			ModuleName: "Department",
			Table:      "md_departments",
			Children:   []ChildRef{{Table: "md_designations", Column: "parent_id", Label: "designations"}},
		},
		{
			Resource:   "designations",
			ModuleName: "Designation",
			Table:      "md_designations",
			Parent:     &ParentRef{Resource: "departments", Required: true},
			Children:   []ChildRef{{Table: "md_user_info", Column: "parent_id", Label: "users"}},
		},
		{
			Resource:   "modules",
			ModuleName: "Module",
			Table:      "md_modules",
			Children:   []ChildRef{{Table: "md_folders", Column: "parent_id", Label: "folders"}},
		},
		{
			// Folder deletes bypass the reference check in the source system.
			Resource:             "folders",
			ModuleName:           "Folder",
			Table:                "md_folders",
			Parent:               &ParentRef{Resource: "modules", Required: false},
			SkipDeleteValidation: true,
		},
		{
			// Same intentional bypass as folders.
			Resource:             "doc-types",
			ModuleName:           "Document Type",
			Table:                "md_doc_types",
			Parent:               &ParentRef{Resource: "folders", Required: false},
			SkipDeleteValidation: true,
		},
		{
			Resource:   "picklists",
			ModuleName: "Picklist",
			Table:      "md_picklists",
			CacheList:  true,
		},
		{
			Resource:   "groups",
			ModuleName: "Group",
			Table:      "md_groups",
			Children:   []ChildRef{{Table: "md_user_info", Column: "group_id", Label: "users"}},
		},
		{
			Resource:   "user-info",
			ModuleName: "User Info",
			Table:      "md_user_info",
			Parent:     &ParentRef{Resource: "designations", Required: false},
		},
	}
}
