package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
)

// requiredWorkflowInputs lists the inputs each reusable workflow call site
// must supply. The reusable workflows themselves live out of tree; only
// their calling contract is known here.
var requiredWorkflowInputs = map[string][]string{
	"lint-unit.yaml": {"python-version", "tox-version"},
	"func.yaml": {
		"command",
		"juju-channel",
		"nested-containers",
		"provider",
		"python-version",
		"timeout-minutes",
		"tox-version",
	},
}

var (
	allowedPullRequestTypes    = []string{"opened", "synchronize", "reopened"}
	allowedPullRequestBranches = []string{"master", "main"}
)

// WorkflowChecker validates CI workflow definitions against the policy
// the charm repositories follow.
type WorkflowChecker struct{}

// NewWorkflowChecker creates a WorkflowChecker.
func NewWorkflowChecker() *WorkflowChecker {
	return &WorkflowChecker{}
}

// Check validates one workflow document and returns every problem found.
// An empty slice means the workflow passes.
func (c *WorkflowChecker) Check(ctx context.Context, name string, data []byte) []string {
	logger := ctxlog.From(ctx)

	w, err := model.ParseWorkflow(data)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	problems = append(problems, checkTriggers(w)...)

	for _, jobName := range sortedJobNames(w) {
		job := w.Jobs[jobName]
		problems = append(problems, checkJob(w, jobName, job)...)
	}

	logger.Debug("checked workflow",
		"workflow", name,
		"jobs", len(w.Jobs),
		"problems", len(problems),
	)
	return problems
}

func checkTriggers(w *model.Workflow) []string {
	pr := w.On.PullRequest
	if pr == nil {
		return nil
	}

	var problems []string
	if len(pr.Types) == 0 {
		problems = append(problems, "pull_request trigger must restrict its action types")
	}
	for _, t := range pr.Types {
		if !contains(allowedPullRequestTypes, t) {
			problems = append(problems, fmt.Sprintf("pull_request type %q is not allowed (want one of %s)",
				t, strings.Join(allowedPullRequestTypes, ", ")))
		}
	}

	if len(pr.Branches) == 0 {
		problems = append(problems, "pull_request trigger must restrict its branches")
	}
	for _, b := range pr.Branches {
		if !contains(allowedPullRequestBranches, b) {
			problems = append(problems, fmt.Sprintf("pull_request branch %q is not allowed (want one of %s)",
				b, strings.Join(allowedPullRequestBranches, ", ")))
		}
	}

	return problems
}

func checkJob(w *model.Workflow, name string, job model.Job) []string {
	var problems []string

	for _, dep := range job.Needs {
		if _, ok := w.Job(dep); !ok {
			problems = append(problems, fmt.Sprintf("job %q needs undeclared job %q", name, dep))
		}
	}

	workflowName := job.ReusableWorkflowName()

	// Functional test jobs gate on lint and unit tests
	if workflowName == "func.yaml" && !needsLintUnit(w, job) {
		problems = append(problems, fmt.Sprintf("job %q runs functional tests but does not declare 'needs' on the lint-unit job", name))
	}

	if required, ok := requiredWorkflowInputs[workflowName]; ok {
		for _, input := range required {
			if _, supplied := job.With[input]; !supplied {
				problems = append(problems, fmt.Sprintf("job %q is missing required input %q for %s", name, input, workflowName))
			}
		}
	}

	if job.Strategy != nil && job.Strategy.Matrix != nil {
		if job.Strategy.FailFast == nil || *job.Strategy.FailFast {
			problems = append(problems, fmt.Sprintf("job %q declares a matrix without fail-fast: false", name))
		}
	}

	return problems
}

// needsLintUnit reports whether the job depends on a job that calls the
// lint-unit reusable workflow.
func needsLintUnit(w *model.Workflow, job model.Job) bool {
	for _, dep := range job.Needs {
		depJob, ok := w.Job(dep)
		if ok && depJob.ReusableWorkflowName() == "lint-unit.yaml" {
			return true
		}
	}
	return false
}

func sortedJobNames(w *model.Workflow) []string {
	names := make([]string, 0, len(w.Jobs))
	for name := range w.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// DefaultWorkflowYAML is the canonical check workflow for a charm
// repository: lint and unit tests across python versions, then functional
// tests across Juju channels on an LXD provider.
const DefaultWorkflowYAML = `name: Tests

on:
  workflow_call:
  workflow_dispatch:
  pull_request:
    types: [opened, synchronize, reopened]
    branches: [master, main]
    paths-ignore:
      - "**.md"
      - "**.rst"

jobs:
  lint-unit:
    name: Lint checks and unit tests
    strategy:
      fail-fast: false
      matrix:
        python-version: ["3.8", "3.10"]
    uses: canonical/bootstack-actions/.github/workflows/lint-unit.yaml@v2
    with:
      python-version: ${{ matrix.python-version }}
      tox-version: "<4"

  func:
    name: Functional tests
    needs: lint-unit
    strategy:
      fail-fast: false
      matrix:
        include:
          - juju-channel: "2.9/stable"
            command: "make functional"
          - juju-channel: "3.3/stable"
            command: "make functional33-jammy"
          - juju-channel: "3.3/stable"
            command: "make functional33-focal"
    uses: canonical/bootstack-actions/.github/workflows/func.yaml@v2
    with:
      command: ${{ matrix.command }}
      juju-channel: ${{ matrix.juju-channel }}
      nested-containers: true
      provider: "lxd"
      python-version: "3.10"
      timeout-minutes: 120
      tox-version: "<4"
`
