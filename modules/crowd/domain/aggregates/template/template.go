package template

import (
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

var placeholderPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ExtractFields returns the distinct placeholder names referenced by a
// template body, sorted. Placeholders look like ${name} where name is one or
// more word characters.
func ExtractFields(body string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[m[1]] = struct{}{}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

type Template struct {
	id                 uuid.UUID
	name               string
	body               string
	defaultAssignments int
	createdAt          time.Time
	updatedAt          time.Time
}

func New(name, body string, defaultAssignments int) Template {
	if defaultAssignments < 1 {
		defaultAssignments = 1
	}
	now := time.Now()
	return Template{
		id:                 uuid.New(),
		name:               name,
		body:               body,
		defaultAssignments: defaultAssignments,
		createdAt:          now,
		updatedAt:          now,
	}
}

func Hydrate(
	id uuid.UUID,
	name, body string,
	defaultAssignments int,
	createdAt, updatedAt time.Time,
) Template {
	return Template{
		id:                 id,
		name:               name,
		body:               body,
		defaultAssignments: defaultAssignments,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (t Template) ID() uuid.UUID {
	return t.id
}

func (t Template) Name() string {
	return t.name
}

func (t Template) Body() string {
	return t.body
}

func (t Template) DefaultAssignments() int {
	return t.defaultAssignments
}

func (t Template) CreatedAt() time.Time {
	return t.createdAt
}

func (t Template) UpdatedAt() time.Time {
	return t.updatedAt
}

// Fields is recomputed from the body on every call so it can never disagree
// with the stored markup.
func (t Template) Fields() []string {
	return ExtractFields(t.body)
}

func (t Template) WithName(name string) Template {
	t.name = name
	t.updatedAt = time.Now()
	return t
}

func (t Template) WithBody(body string) Template {
	t.body = body
	t.updatedAt = time.Now()
	return t
}

func (t Template) WithDefaultAssignments(n int) Template {
	if n < 1 {
		n = 1
	}
	t.defaultAssignments = n
	t.updatedAt = time.Now()
	return t
}
