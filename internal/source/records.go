package source

// Unit is one organisational object from the HRP1000 extract.
type Unit struct {
	Line      int
	ID        Field
	Name      Field
	Status    Field
	StartDate Field
	EndDate   Field
	Row       Row
}

// Relationship is one child-to-parent link from the HRP1001 extract.
type Relationship struct {
	Line      int
	ChildID   Field
	ParentID  Field
	Type      Field
	Status    Field
	StartDate Field
	EndDate   Field
	Row       Row
}

// Units converts a unit table into typed records.
func Units(t *Table, cols Columns) ([]Unit, error) {
	if err := t.RequireColumns(cols.UnitRequired()...); err != nil {
		return nil, err
	}
	out := make([]Unit, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, Unit{
			Line:      r.Line,
			ID:        r.Field(cols.UnitID),
			Name:      r.Field(cols.UnitName),
			Status:    r.Field(cols.UnitStatus),
			StartDate: r.Field(cols.UnitStart),
			EndDate:   r.Field(cols.UnitEnd),
			Row:       r,
		})
	}
	return out, nil
}

// Relationships converts a relationship table into typed records.
func Relationships(t *Table, cols Columns) ([]Relationship, error) {
	if err := t.RequireColumns(cols.RelationshipRequired()...); err != nil {
		return nil, err
	}
	out := make([]Relationship, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, Relationship{
			Line:      r.Line,
			ChildID:   r.Field(cols.RelChild),
			ParentID:  r.Field(cols.RelParent),
			Type:      r.Field(cols.RelType),
			Status:    r.Field(cols.RelStatus),
			StartDate: r.Field(cols.RelStart),
			EndDate:   r.Field(cols.RelEnd),
			Row:       r,
		})
	}
	return out, nil
}
