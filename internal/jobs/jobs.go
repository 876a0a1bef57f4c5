package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// StartJobs starts the background job scheduler.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	scheduleJob(s, app, "session-purge", 60)
	scheduleJob(s, app, "favicon-refresh", 360)
	scheduleJob(s, app, "sync-all", app.Config().Sync.Interval)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

func scheduleJob(s *gocron.Scheduler, app JobContext, jobID string, intervalMinutes int) {
	if intervalMinutes == 0 {
		log.Printf("Interval for job '%s' is 0, scheduled runs are disabled.", jobID)
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobID, intervalMinutes)

	_, err := s.Every(intervalMinutes).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(jobID, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}
