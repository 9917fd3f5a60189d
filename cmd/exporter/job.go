package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"guestflat/internal/adapters/export"
	"guestflat/internal/app"
)

type reportSource interface {
	ApartmentReport(ctx context.Context, from, to time.Time) (app.ApartmentReport, error)
}

// exportJob writes one report file per month and format.
type exportJob struct {
	src     reportSource
	dir     string
	workers int
	formats []export.Format
}

func (j *exportJob) runYear(ctx context.Context, year int) error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	workers := j.workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for m := time.January; m <= time.December; m++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			errs = append(errs, err)
			break
		}
		wg.Add(1)
		go func(month time.Month) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := j.runMonth(ctx, year, month)
			if err != nil {
				log.Warn().Int("year", year).Int("month", int(month)).Err(err).Msg("export failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			log.Info().Int("year", year).Int("month", int(month)).Int("files", n).Msg("export ok")
		}(m)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// runMonth returns the number of files written; months without bookings write none.
func (j *exportJob) runMonth(ctx context.Context, year int, month time.Month) (int, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	rep, err := j.src.ApartmentReport(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", from.Format("2006-01"), err)
	}
	if len(rep.Rows) == 0 {
		return 0, nil
	}
	doc := export.Document{
		Title:      "Guest apartment report " + from.Format("January 2006"),
		From:       rep.From,
		To:         rep.To,
		Rows:       rep.Rows,
		GrandTotal: rep.GrandTotal,
	}
	written := 0
	for _, f := range j.formats {
		b, err := export.Render(f, doc)
		if err != nil {
			return written, fmt.Errorf("%s %s: %w", from.Format("2006-01"), f, err)
		}
		name := filepath.Join(j.dir, fmt.Sprintf("report-%s.%s", from.Format("2006-01"), f.Ext()))
		if err := os.WriteFile(name, b, 0o644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
