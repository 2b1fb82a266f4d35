package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andy/jobclock/internal/domain"
)

// resolveJob finds one of the user's jobs by ID or by exact name
func resolveJob(ctx context.Context, idOrName string) (*domain.Job, error) {
	job, err := appInstance.JobService.Get(ctx, appInstance.UserID(), idOrName)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	jobs, err := appInstance.JobService.List(ctx, appInstance.UserID(), nil)
	if err != nil {
		return nil, err
	}

	var match *domain.Job
	for _, j := range jobs {
		if !strings.EqualFold(j.Name, idOrName) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("more than one job is named '%s', use its ID", idOrName)
		}
		match = j
	}
	if match == nil {
		return nil, fmt.Errorf("job '%s' not found", idOrName)
	}
	return match, nil
}

func printProjection(p domain.Projection) {
	state := "stopped"
	if p.Job.Timer.IsRunning() {
		state = "running"
	}
	fmt.Printf("  Job: %s (%s)\n", p.Job.Name, p.Job.ID)
	fmt.Printf("  Status: %s, %s\n", p.Job.Timer.Status, state)
	fmt.Printf("  Total: %s\n", p.Display)
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
