package search

import (
	"fmt"
	"reflect"
	"strings"
)

// Source is one searchable slice of the index, fed by one collection.
type Source struct {
	Key        string
	Label      string
	Collection string
	Title      string
	Subtitle   string
	Keywords   []string
	// Route is a format string taking the document id.
	Route string
	// Expand, when set, turns one document into several items.
	Expand func(doc map[string]any) []Item
	// Match, when set, keeps only the documents it accepts.
	Match func(doc map[string]any) bool
}

// Sources is every collection the search palette covers.
var Sources = []Source{
	{Key: "projects", Label: "Projects", Collection: "projects", Title: "name", Subtitle: "casrPart", Keywords: []string{"description", "tags", "type", "owner"}, Route: "/projects/%s"},
	{Key: "tasks", Label: "Tasks", Collection: "projects", Expand: expandTasks},
	{Key: "users", Label: "People", Collection: "users", Title: "name", Subtitle: "division", Keywords: []string{"username", "email"}, Route: "/users/%s"},
	{Key: "compliance_records", Label: "Compliance", Collection: "compliance_records", Title: "requirement", Subtitle: "operator", Keywords: []string{"casrPart", "status", "findings"}, Route: "/compliance/%s"},
	{Key: "casr_regulations", Label: "Regulations", Collection: "casr_regulations", Title: "title", Subtitle: "part", Keywords: []string{"summary", "amendment"}, Route: "/regulations/%s"},
	{Key: "accident_reports", Label: "Accidents", Collection: "occurrences", Title: "summary", Subtitle: "aircraftRegistration", Keywords: []string{"operator", "location", "severity"}, Route: "/occurrences/%s", Match: kindIs("accident")},
	{Key: "incident_reports", Label: "Incidents", Collection: "occurrences", Title: "summary", Subtitle: "aircraftRegistration", Keywords: []string{"operator", "location", "severity"}, Route: "/occurrences/%s", Match: kindIs("incident")},
	{Key: "sanctions", Label: "Sanctions", Collection: "sanctions", Title: "reference", Subtitle: "operator", Keywords: []string{"casrPart", "kind", "status"}, Route: "/sanctions/%s"},
	{Key: "activity_logs", Label: "Activity", Collection: "activity_logs", Title: "details", Subtitle: "actor", Keywords: []string{"activityType"}, Route: "/activity/%s"},
	{Key: "chat_rooms", Label: "Chat rooms", Collection: "chat_rooms", Title: "name", Subtitle: "topic", Route: "/chat/%s"},
	{Key: "teams", Label: "Teams", Collection: "teams", Title: "name", Subtitle: "division", Keywords: []string{"members"}, Route: "/teams/%s"},
	{Key: "documents", Label: "Documents", Collection: "documents", Title: "title", Subtitle: "category", Keywords: []string{"tags", "fileName"}, Route: "/documents/%s"},
	{Key: "inspections", Label: "Inspections", Collection: "inspections", Title: "title", Subtitle: "operator", Keywords: []string{"inspector", "result"}, Route: "/inspections/%s"},
	{Key: "operators", Label: "Operators", Collection: "operators", Title: "name", Subtitle: "aocNumber", Keywords: []string{"icao", "iata"}, Route: "/operators/%s"},
	{Key: "aircraft", Label: "Aircraft", Collection: "aircraft", Title: "registration", Subtitle: "type", Keywords: []string{"operator", "serialNumber"}, Route: "/aircraft/%s"},
}

// SourceByKey looks a source up by its key.
func SourceByKey(key string) (Source, bool) {
	for _, s := range Sources {
		if s.Key == key {
			return s, true
		}
	}
	return Source{}, false
}

// Items converts a stored document into index items.
func (s Source) Items(doc map[string]any) []Item {
	if s.Match != nil && !s.Match(doc) {
		return nil
	}
	if s.Expand != nil {
		items := s.Expand(doc)
		for i := range items {
			items[i].Source = s.Key
		}
		return items
	}
	id := DocID(doc)
	if id == "" {
		return nil
	}
	it := Item{
		Source:   s.Key,
		ID:       id,
		TenantID: str(doc["tenantId"]),
		Title:    str(doc[s.Title]),
		Subtitle: str(doc[s.Subtitle]),
		Route:    fmt.Sprintf(s.Route, id),
	}
	for _, k := range s.Keywords {
		it.Keywords = append(it.Keywords, strs(doc[k])...)
	}
	return []Item{it}
}

// DocID renders a document's _id, ObjectID or plain string.
func DocID(doc map[string]any) string {
	switch id := doc["_id"].(type) {
	case interface{ Hex() string }:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func kindIs(kind string) func(map[string]any) bool {
	return func(doc map[string]any) bool { return str(doc["kind"]) == kind }
}

func expandTasks(doc map[string]any) []Item {
	projectID := DocID(doc)
	project := str(doc["name"])
	tenant := str(doc["tenantId"])
	var items []Item
	var walk func(v any)
	walk = func(v any) {
		for _, raw := range list(v) {
			t, ok := asMap(raw)
			if !ok {
				continue
			}
			id := str(t["id"])
			items = append(items, Item{
				ID:       projectID + "/" + id,
				ParentID: projectID,
				TenantID: tenant,
				Title:    str(t["title"]),
				Subtitle: project,
				Keywords: append(strs(t["assignees"]), str(t["status"])),
				Route:    fmt.Sprintf("/projects/%s/tasks/%s", projectID, id),
			})
			walk(t["subtasks"])
		}
	}
	walk(doc["tasks"])
	return items
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func strs(v any) []string {
	if s, ok := v.(string); ok {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var out []string
	for _, e := range list(v) {
		if s := strings.TrimSpace(str(e)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// list accepts []any and the driver's named array types alike.
func list(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// asMap accepts map[string]any and named map types such as bson.M.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
