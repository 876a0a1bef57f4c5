package sync

import "github.com/suiren/x-bookmarker/internal/models"

// progressCounter accumulates per-item progress during a sync run and
// renders it as the JobProgress snapshot persisted on the job row.
type progressCounter struct {
	Total     uint // 0 until the source reports one
	Processed uint
	Current   string
	Errors    []string
}

func (c *progressCounter) Advance(currentItem string) {
	c.Processed++
	c.Current = currentItem
}

func (c *progressCounter) RecordError(msg string) {
	c.Processed++
	if len(c.Errors) < maxRecordedErrors {
		c.Errors = append(c.Errors, msg)
	}
}

func (c *progressCounter) Snapshot() models.JobProgress {
	p := models.JobProgress{
		Total:       c.Total,
		Processed:   c.Processed,
		CurrentItem: c.Current,
		Errors:      c.Errors,
	}
	if c.Total > 0 {
		pct := int(c.Processed * 100 / c.Total)
		if pct > 100 {
			pct = 100
		}
		p.Percentage = pct
	}
	return p
}
