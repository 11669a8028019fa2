package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pageforge/internal/llmclient"
)

func TestPlannerSimpleProducesOneSectionWithMarkedSeed(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		respond(`{"complexity_level":"Simple"}`),
	}}
	strong := &scriptedLLM{steps: []scriptStep{
		respond(`{"component_spec":{"component_name":"Pricing Card","layout_structure":"a card","image_requirements":[],"css_style_and_animation_instructions":"soft shadows"},"global_css":".card{color:red}"}`),
	}}
	p := &Planner{LLM: weak, Strong: strong}

	plan, err := p.Plan(context.Background(), "a pricing card")
	require.NoError(t, err)
	require.Equal(t, ComplexitySimple, plan.Complexity)
	require.Len(t, plan.Sections, 1)
	require.Equal(t, "Pricing Card", plan.Sections[0].Name)
	require.True(t, strings.HasPrefix(plan.SeedStyle, "/*Global CSS*/"))
	require.Contains(t, plan.SeedStyle, ".card{color:red}")
}

func TestPlannerComplexProducesOrderedSections(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		respond(`{"complexity_level":"COMPLEX"}`),
	}}
	strong := &scriptedLLM{steps: []scriptStep{
		respond(`{"sections":[
			{"section_name":"Hero","layout_structure":"hero","css_style_and_animation_instructions":"big"},
			{"section_name":"Footer","layout_structure":"footer","css_style_and_animation_instructions":"small"}
		],"global_css":"body{margin:0}"}`),
	}}
	p := &Planner{LLM: weak, Strong: strong}

	plan, err := p.Plan(context.Background(), "a landing page")
	require.NoError(t, err)
	require.Equal(t, ComplexityComplex, plan.Complexity)
	require.Equal(t, []string{"Hero", "Footer"}, []string{plan.Sections[0].Name, plan.Sections[1].Name})
	require.Equal(t, "body{margin:0}", plan.SeedStyle)
}

func TestPlannerDefaultsMissingSectionName(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		respond(`{"complexity_level":"complex"}`),
	}}
	strong := &scriptedLLM{steps: []scriptStep{
		respond(`{"sections":[{"layout_structure":"hero","css_style_and_animation_instructions":"big"}],"global_css":"body{}"}`),
	}}
	p := &Planner{LLM: weak, Strong: strong}

	plan, err := p.Plan(context.Background(), "something")
	require.NoError(t, err)
	require.Equal(t, DefaultSectionName, plan.Sections[0].Name)
}

func TestPlannerRejectsEmptySections(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		respond(`{"complexity_level":"complex"}`),
	}}
	strong := &scriptedLLM{steps: []scriptStep{
		respond(`{"sections":[],"global_css":"body{}"}`),
	}}
	p := &Planner{LLM: weak, Strong: strong}

	_, err := p.Plan(context.Background(), "something")
	var malformed *llmclient.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestPlannerRejectsEmptyGlobalStyle(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		respond(`{"complexity_level":"complex"}`),
	}}
	strong := &scriptedLLM{steps: []scriptStep{
		respond(`{"sections":[{"section_name":"Hero","layout_structure":"hero"}],"global_css":"  "}`),
	}}
	p := &Planner{LLM: weak, Strong: strong}

	_, err := p.Plan(context.Background(), "something")
	var malformed *llmclient.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestPlannerPropagatesClassifierFailure(t *testing.T) {
	weak := &scriptedLLM{steps: []scriptStep{
		failWith(errors.New("backend down")),
	}}
	p := &Planner{LLM: weak, Strong: &scriptedLLM{}}

	_, err := p.Plan(context.Background(), "something")
	require.ErrorContains(t, err, "backend down")
}
