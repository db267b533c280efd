package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"slackvite/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// SlackPinger checks that the admin token is accepted by the Slack API.
type SlackPinger interface {
	Ping(ctx context.Context) error
}

// Report is the body of /health/json.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapMB        int    `json:"heapMB"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime string      `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collect gathers dependency reachability and the traffic counters kept by
// middleware.HealthMarker. Status is "ok" only when database and redis are up; Slack
// being unreachable degrades the workflow but not the site.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger, chat SlackPinger) Report {
	report := Report{Dependencies: make(map[string]DepStatus)}

	report.Dependencies["database"] = ping(db != nil, func() error { return db.Ping() })
	report.Dependencies["slack"] = ping(chat != nil, func() error { return chat.Ping(ctx) })
	redisDep := ping(rdb != nil, func() error { return rdb.Ping(ctx).Err() })
	report.Dependencies["redis"] = redisDep

	startMs := time.Now().UnixMilli()
	report.Traffic = TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	if redisDep.Status == "connected" {
		startMs = readTraffic(ctx, rdb, &report.Traffic, startMs)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		HeapMB:        int(m.HeapInuse / 1024 / 1024),
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	report.Status = "issue"
	if report.Dependencies["database"].Status == "connected" && redisDep.Status == "connected" {
		report.Status = "ok"
	}
	return report
}

func ping(configured bool, fn func() error) DepStatus {
	if !configured {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := fn(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// readTraffic fills stats from Redis and returns the recorded start time, setting it
// if this is the first report since a reset.
func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, nowMs int64) int64 {
	totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
	totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
	totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
	resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
	startStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
	lastReq, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

	startMs := nowMs
	if t, err := strconv.ParseInt(startStr, 10, 64); err == nil {
		startMs = t
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, nowMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(totalReq)
	stats.FailedCount, _ = strconv.Atoi(totalErr)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	if n, _ := strconv.Atoi(resCount); n > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(n), 'f', 2, 64)
	}
	if lastReq != "" {
		var v map[string]interface{}
		if json.Unmarshal([]byte(lastReq), &v) == nil {
			stats.LastRequest = v
		}
	}
	return startMs
}
