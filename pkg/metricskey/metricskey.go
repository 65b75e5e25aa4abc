// Package metricskey describes the metrics emitted by this service.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsQueriesSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_queries_succeeded",
		Help:         "stats_queries_succeeded provides total queries processed successfully",
		RequiredTags: []string{"model"},
	}

	StatsQueriesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_queries_failed",
		Help:         "stats_queries_failed provides total queries failed",
		RequiredTags: []string{"model"},
	}

	StatsModelRounds = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_rounds",
		Help:         "stats_model_rounds provides total model completion rounds",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfQueryProcess = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_query_process",
		Help:         "perf_query_process provides duration of query processing",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfQueryProcess,
	&PerfToolCall,
	&StatsModelRounds,
	&StatsQueriesFailed,
	&StatsQueriesSucceeded,
	&StatsToolCallsFailed,
	&StatsToolCallsSucceeded,
}
