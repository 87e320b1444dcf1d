package model

import (
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Workflow is a parsed CI workflow definition. Only the parts the agent
// checks are modeled: triggers, job wiring and reusable workflow call
// sites.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Triggers       `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// ParseWorkflow parses a workflow YAML document.
func ParseWorkflow(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, goerr.Wrap(err, "failed to parse workflow document")
	}
	if len(w.Jobs) == 0 {
		return nil, goerr.New("workflow declares no jobs")
	}
	return &w, nil
}

// Job returns the job with the given name, if declared.
func (w *Workflow) Job(name string) (Job, bool) {
	j, ok := w.Jobs[name]
	return j, ok
}

// Triggers captures the workflow trigger configuration. GitHub accepts a
// scalar, a sequence or a mapping under 'on'; all three forms parse.
type Triggers struct {
	WorkflowCall     bool
	WorkflowDispatch bool
	PullRequest      *PullRequestTrigger
	Other            []string
}

func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.set(node.Value, nil)
		return nil

	case yaml.SequenceNode:
		for _, item := range node.Content {
			t.set(item.Value, nil)
		}
		return nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			t.set(key, node.Content[i+1])
		}
		return nil

	default:
		return goerr.New("unexpected YAML node for workflow triggers")
	}
}

func (t *Triggers) set(event string, value *yaml.Node) {
	switch event {
	case "workflow_call":
		t.WorkflowCall = true
	case "workflow_dispatch":
		t.WorkflowDispatch = true
	case "pull_request":
		pr := &PullRequestTrigger{}
		if value != nil && value.Kind == yaml.MappingNode {
			// Filters are optional; a bare 'pull_request:' is valid.
			_ = value.Decode(pr)
		}
		t.PullRequest = pr
	default:
		t.Other = append(t.Other, event)
	}
}

// PullRequestTrigger holds the filters of a pull_request trigger.
type PullRequestTrigger struct {
	Types       []string `yaml:"types"`
	Branches    []string `yaml:"branches"`
	PathsIgnore []string `yaml:"paths-ignore"`
}

// Job is a single workflow job. Jobs in this model either call a reusable
// workflow ('uses') or are opaque.
type Job struct {
	Needs    StringList        `yaml:"needs"`
	Uses     string            `yaml:"uses"`
	Strategy *Strategy         `yaml:"strategy"`
	With     map[string]Scalar `yaml:"with"`
}

// NeedsJob reports whether the job declares a dependency on another job.
func (j Job) NeedsJob(name string) bool {
	for _, n := range j.Needs {
		if n == name {
			return true
		}
	}
	return false
}

// ReusableWorkflowName returns the file name of the reusable workflow a
// job calls: "org/repo/.github/workflows/func.yaml@v1" yields "func.yaml".
// Empty when the job does not call a reusable workflow.
func (j Job) ReusableWorkflowName() string {
	if j.Uses == "" {
		return ""
	}
	ref := j.Uses
	if at := strings.IndexByte(ref, '@'); at >= 0 {
		ref = ref[:at]
	}
	return path.Base(ref)
}

// Strategy is a job's matrix strategy.
type Strategy struct {
	FailFast *bool   `yaml:"fail-fast"`
	Matrix   *Matrix `yaml:"matrix"`
}

// Matrix holds matrix dimensions and explicit include combinations. Scalar
// values keep their literal source text, so '3.10' stays "3.10" rather
// than becoming a float.
type Matrix struct {
	Dimensions map[string][]string
	Include    []map[string]string
}

func (m *Matrix) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return goerr.New("matrix must be a mapping")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		if key == "include" {
			if value.Kind != yaml.SequenceNode {
				return goerr.New("matrix include must be a sequence")
			}
			for _, item := range value.Content {
				if item.Kind != yaml.MappingNode {
					return goerr.New("matrix include entry must be a mapping")
				}
				entry := map[string]string{}
				for k := 0; k+1 < len(item.Content); k += 2 {
					entry[item.Content[k].Value] = item.Content[k+1].Value
				}
				m.Include = append(m.Include, entry)
			}
			continue
		}

		var values StringList
		if err := value.Decode(&values); err != nil {
			return err
		}
		if m.Dimensions == nil {
			m.Dimensions = map[string][]string{}
		}
		m.Dimensions[key] = values
	}

	return nil
}

// Combinations expands the matrix into the set of parameter combinations
// the CI platform would run. Include entries are appended as-is after the
// cartesian product of the dimensions.
func (m *Matrix) Combinations() []map[string]string {
	combos := []map[string]string{{}}
	if len(m.Dimensions) > 0 {
		for key, values := range m.Dimensions {
			var next []map[string]string
			for _, combo := range combos {
				for _, v := range values {
					entry := map[string]string{}
					for ck, cv := range combo {
						entry[ck] = cv
					}
					entry[key] = v
					next = append(next, entry)
				}
			}
			combos = next
		}
	} else {
		combos = nil
	}

	combos = append(combos, m.Include...)
	return combos
}

// StringList accepts either a scalar or a sequence of scalars. Values keep
// their literal text.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return goerr.New("expected scalar list item")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return goerr.New("expected scalar or sequence")
	}
}

// Scalar is a YAML scalar kept as its literal source text.
type Scalar string

func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return goerr.New("expected scalar value")
	}
	*s = Scalar(node.Value)
	return nil
}
