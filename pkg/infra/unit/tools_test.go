package unit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/infra/unit"
	"github.com/m-mizutani/gt"
)

// fakeRunner records every invoked command and serves canned output
type fakeRunner struct {
	calls   []string
	outputs map[string]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	return f.outputs[name], nil
}

func TestSetStatus(t *testing.T) {
	runner := &fakeRunner{}
	tools := unit.New(runner)

	gt.NoError(t, tools.SetStatus(context.Background(), model.Blocked("Invalid configuration.")))
	gt.Value(t, runner.calls).Equal([]string{"status-set blocked Invalid configuration."})

	runner.calls = nil
	gt.NoError(t, tools.SetStatus(context.Background(), model.Active()))
	gt.Value(t, runner.calls).Equal([]string{"status-set active"})
}

func TestOpenedPorts(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"opened-ports": "9275/tcp\n8080/tcp\n\n",
	}}
	tools := unit.New(runner)

	specs, err := tools.OpenedPorts(context.Background())
	gt.NoError(t, err)
	gt.Value(t, specs).Equal([]string{"9275/tcp", "8080/tcp"})
}

func TestPortManagement(t *testing.T) {
	runner := &fakeRunner{}
	tools := unit.New(runner)

	gt.NoError(t, tools.OpenPort(context.Background(), 9275))
	gt.NoError(t, tools.ClosePort(context.Background(), "8080/tcp"))

	gt.Value(t, runner.calls).Equal([]string{
		"open-port 9275/tcp",
		"close-port 8080/tcp",
	})
}

func TestPublishScrapeTarget(t *testing.T) {
	target := model.ScrapeTarget{
		Port:            9275,
		MetricsPath:     "/metrics",
		IntervalSeconds: 300,
		TimeoutSeconds:  30,
	}

	t.Run("with related applications", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"relation-ids": "prometheus-scrape:0 prometheus-scrape:1",
		}}
		tools := unit.New(runner)

		gt.NoError(t, tools.PublishScrapeTarget(context.Background(), target))
		gt.Value(t, runner.calls).Equal([]string{
			"relation-ids prometheus-scrape",
			"relation-set -r prometheus-scrape:0 port=9275 metrics_path=/metrics scrape_interval=300s scrape_timeout=30s",
			"relation-set -r prometheus-scrape:1 port=9275 metrics_path=/metrics scrape_interval=300s scrape_timeout=30s",
		})
	})

	t.Run("without relations it is a no-op", func(t *testing.T) {
		runner := &fakeRunner{}
		tools := unit.New(runner)

		gt.NoError(t, tools.PublishScrapeTarget(context.Background(), target))
		gt.Value(t, runner.calls).Equal([]string{"relation-ids prometheus-scrape"})
	})
}
