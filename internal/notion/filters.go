package notion

// Filter is a database query filter object.
type Filter map[string]any

// SelectEquals matches rows whose select property equals name.
func SelectEquals(property, name string) Filter {
	return Filter{"property": property, "select": map[string]string{"equals": name}}
}

// TitleEquals matches rows whose title equals value.
func TitleEquals(property, value string) Filter {
	return Filter{"property": property, "title": map[string]string{"equals": value}}
}

// RichTextEquals matches rows whose rich text property equals value.
func RichTextEquals(property, value string) Filter {
	return Filter{"property": property, "rich_text": map[string]string{"equals": value}}
}

// RelationContains matches rows whose relation property contains pageID.
func RelationContains(property, pageID string) Filter {
	return Filter{"property": property, "relation": map[string]string{"contains": pageID}}
}

// And combines filters with a logical and.
func And(filters ...Filter) Filter {
	return Filter{"and": filters}
}
