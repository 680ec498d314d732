package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/jobindex"
)

// DiscoveryHandler lists open postings and turns a numbered reply into the
// active job context. It is entered through the router only; other handlers
// never transfer here.
type DiscoveryHandler struct {
	jobs JobLookup
	log  *zap.Logger
}

func NewDiscoveryHandler(jobs JobLookup, log *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{jobs: jobs, log: log}
}

func (h *DiscoveryHandler) Target() Target { return TargetDiscovery }

func (h *DiscoveryHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State
	message := strings.TrimSpace(turn.Message)

	if last := state.LastInteraction(); last != nil && last.Action == actionOfferedListing {
		if id, ok := selectionFromFields(message, last.Fields, "option"); ok {
			return h.selectJob(ctx, turn, id)
		}
		if isSelection(message) {
			// A number outside the offered range is read as a posting id,
			// candidates paste ids straight from the ad.
			return h.selectJob(ctx, turn, message)
		}
		if wantsMore(message) {
			return h.list(ctx, turn, state.CurrentSearchStep)
		}
	}

	if isSelection(message) {
		return h.selectJob(ctx, turn, message)
	}

	if message != "" && turn.Classification != nil && turn.Classification.Intent == ai.IntentJobQuery {
		// Free text reaching discovery is a search hint. The index has no
		// query endpoint, so the criteria ride along for staff follow-up.
		state.CollectedCriteria["query"] = message
	}

	return h.list(ctx, turn, 0)
}

func (h *DiscoveryHandler) list(ctx context.Context, turn *Turn, offset int) (*Result, error) {
	page, err := h.jobs.ListAvailable(ctx, offset, jobindex.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	var posted []*jobindex.Job
	if page.Jobs != nil {
		posted = page.Jobs.Items
	}

	open := make([]*jobindex.Job, 0, len(posted))
	for _, job := range posted {
		if job.IsAvailable(turn.Now) {
			open = append(open, job)
		}
	}

	if len(open) == 0 {
		if offset > 0 {
			return &Result{Reply: msgNoMoreListings}, nil
		}
		return &Result{Reply: msgNoListings}, nil
	}

	items := make([]string, 0, len(open))
	fields := map[string]string{fieldCount: strconv.Itoa(len(open))}
	for i, job := range open {
		label := job.Title
		if job.Company != "" {
			label += " - " + job.Company
		}
		items = append(items, label)
		fields[fmt.Sprintf("option_%d", i+1)] = job.ID
	}

	turn.State.CurrentSearchStep = page.NextOffset
	turn.State.AppendInteraction(actionOfferedListing, turn.Now, fields)

	intro := msgListingIntro
	if offset > 0 {
		intro = msgListingMoreIntro
	}
	reply := intro + "\n\n" + numberedLines(items) + "\n\n" + msgListingPrompt
	if page.HasMore {
		reply += msgListingMore
	} else {
		reply += "."
	}

	h.log.Debug("offered listing",
		append(turn.logFields(),
			zap.Int("offered", len(open)),
			zap.Int("next_offset", page.NextOffset))...)

	return &Result{Reply: reply}, nil
}

func (h *DiscoveryHandler) selectJob(ctx context.Context, turn *Turn, id string) (*Result, error) {
	state := turn.State

	job, err := h.jobs.GetJobByID(ctx, id)
	if errors.Is(err, jobindex.ErrNotFound) {
		return &Result{Reply: fmt.Sprintf(msgJobNotFound, id)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up posting %s: %w", id, err)
	}

	if !job.IsAvailable(turn.Now) {
		return &Result{Reply: fmt.Sprintf(msgJobUnavailable, job.Title)}, nil
	}

	state.SetJobContext(job.ID, job.Title, "")
	cacheJobInterest(state, job)
	state.AppendInteraction(actionJobSelected, turn.Now, map[string]string{"job_id": job.ID})

	h.log.Info("job selected",
		append(turn.logFields(), zap.String("job_id", job.ID))...)

	return &Result{Reply: summarizeJob(job) + "\n\n" + msgJobInfoClose}, nil
}
