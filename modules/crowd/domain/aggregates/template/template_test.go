package template_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
)

func TestExtractFields_Dedup(t *testing.T) {
	fields := template.ExtractFields(`<p>${a} and ${b}, then ${a} again</p>`)
	require.Equal(t, []string{"a", "b"}, fields)
}

func TestExtractFields_Empty(t *testing.T) {
	require.Empty(t, template.ExtractFields("<p>no placeholders here</p>"))
	require.Empty(t, template.ExtractFields(""))
}

func TestExtractFields_IgnoresMalformedPlaceholders(t *testing.T) {
	fields := template.ExtractFields(`$name ${good} ${bad name} {also_not} ${trailing`)
	require.Equal(t, []string{"good"}, fields)
}

func TestExtractFields_WordCharacters(t *testing.T) {
	fields := template.ExtractFields(`${city_1} ${City_1} ${_x}`)
	require.Equal(t, []string{"City_1", "_x", "city_1"}, fields)
}

func TestTemplate_FieldsTracksBody(t *testing.T) {
	entity := template.New("Cities", `<p>${city}</p>`, 1)
	require.Equal(t, []string{"city"}, entity.Fields())

	entity = entity.WithBody(`<p>${city} in ${country}</p>`)
	require.Equal(t, []string{"city", "country"}, entity.Fields())
	require.Equal(t, entity.Fields(), entity.Fields())
}

func TestNew_DefaultAssignmentsFloor(t *testing.T) {
	entity := template.New("Cities", "<p></p>", 0)
	require.Equal(t, 1, entity.DefaultAssignments())
}

func TestCreateDTO_Ok(t *testing.T) {
	dto := &template.CreateDTO{Name: "Cities", Body: `<p>${city}</p>`}
	errs, ok := dto.Ok()
	require.True(t, ok)
	require.Empty(t, errs)

	bad := &template.CreateDTO{Body: `<p></p>`}
	errs, ok = bad.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "Name")
}
