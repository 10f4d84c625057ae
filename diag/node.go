package diag

// ErrorNode is a validator error tree: rule names mapped, in order, to one or
// more failure records.
type ErrorNode struct {
	Members []Member
}

// Member is one rule entry. Many distinguishes a list of records from a
// single record even when the list has one element, so a decoded tree
// re-encodes to the same shape.
type Member struct {
	Rule    string
	Records []ErrorRecord
	Many    bool
}

// Single returns a member holding one record.
func Single(rule string, r ErrorRecord) Member {
	return Member{Rule: rule, Records: []ErrorRecord{r}}
}

// Many returns a member holding a list of records.
func Many(rule string, rs ...ErrorRecord) Member {
	return Member{Rule: rule, Records: rs, Many: true}
}

// IsZero reports whether the node has no members.
func (n ErrorNode) IsZero() bool { return len(n.Members) == 0 }

// Add appends a record under rule. A second record for an existing rule turns
// that member into a list.
func (n *ErrorNode) Add(rule string, r ErrorRecord) {
	for i := range n.Members {
		if n.Members[i].Rule == rule {
			n.Members[i].Records = append(n.Members[i].Records, r)
			n.Members[i].Many = true
			return
		}
	}
	n.Members = append(n.Members, Single(rule, r))
}

// Param is a named insert value. Values are strings, bools, nil, numbers
// (json.Number, int, float64 and friends) or slices of those.
type Param struct {
	Name  string
	Value any
}

// ErrorRecord is one failure.
type ErrorRecord struct {
	Code        Code
	InstanceRef string
	SchemaRef   string
	Params      []Param
	Children    Children
	// hasCode tells an explicit code 0 from an absent one.
	hasCode bool
}

// NewRecord returns a populated record.
func NewRecord(code Code, instanceRef, schemaRef string, params ...Param) ErrorRecord {
	return ErrorRecord{Code: code, InstanceRef: instanceRef, SchemaRef: schemaRef, Params: params, hasCode: true}
}

// Empty reports whether the record carries nothing to report.
func (r ErrorRecord) Empty() bool {
	return !r.hasCode && r.Code == 0 && r.InstanceRef == "" && r.SchemaRef == "" && len(r.Params) == 0 && r.Children.Len() == 0
}

// Param returns the insert named name.
func (r ErrorRecord) Param(name string) (any, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// WithChildren returns r with nested errors attached.
func (r ErrorRecord) WithChildren(c Children) ErrorRecord {
	r.Children = c
	return r
}

// Children holds nested errors either as a sequence (one node per
// sub-schema) or keyed by property name.
type Children struct {
	Nodes []ErrorNode
	Keyed []KeyedNode
}

// KeyedNode is one entry of keyed children.
type KeyedNode struct {
	Key  string
	Node ErrorNode
}

// Len returns the number of child nodes.
func (c Children) Len() int { return len(c.Nodes) + len(c.Keyed) }

// IsKeyed reports whether the children are keyed.
func (c Children) IsKeyed() bool { return len(c.Keyed) > 0 }

// All returns child nodes in order regardless of form.
func (c Children) All() []ErrorNode {
	if !c.IsKeyed() {
		return c.Nodes
	}
	out := make([]ErrorNode, 0, len(c.Keyed))
	for _, k := range c.Keyed {
		out = append(out, k.Node)
	}
	return out
}
