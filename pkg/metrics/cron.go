// Copyright 2026 Shigure Cafe Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CronJobRunsTotal counts the total number of cron job runs
	CronJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Total number of cron job runs",
		},
		[]string{"job_name"},
	)

	// CronJobRunDurationSeconds measures the duration of cron job runs
	CronJobRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cron_job_run_duration_seconds",
			Help:    "Duration of cron job runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"job_name"},
	)

	// CronJobSkippedTotal counts runs skipped because the previous run of the
	// same job was still in flight
	CronJobSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_job_skipped_total",
			Help: "Total number of cron job runs skipped due to overlap",
		},
		[]string{"job_name"},
	)

	// CronJobLastRunTime records the last run time of each cron job
	CronJobLastRunTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cron_job_last_run_time_seconds",
			Help: "Last run time of cron job in seconds since epoch",
		},
		[]string{"job_name"},
	)
)

func cronCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		CronJobRunsTotal,
		CronJobRunDurationSeconds,
		CronJobSkippedTotal,
		CronJobLastRunTime,
	}
}

// RecordCronJobRun records a cron job run
func RecordCronJobRun(jobName string, duration time.Duration) {
	CronJobRunsTotal.WithLabelValues(jobName).Inc()
	CronJobRunDurationSeconds.WithLabelValues(jobName).Observe(duration.Seconds())
	CronJobLastRunTime.WithLabelValues(jobName).Set(float64(time.Now().Unix()))
}

// RecordCronJobSkipped records an overlapping run that was skipped
func RecordCronJobSkipped(jobName string) {
	CronJobSkippedTotal.WithLabelValues(jobName).Inc()
}
