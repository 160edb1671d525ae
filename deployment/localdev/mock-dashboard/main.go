package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const reportHeader = "timestamp,cpu_percent,ram_percent,disk_percent,temperature_c,arp_device_count,apc_status,rtsp_recorder_status,internet_status,pending_videos,eth0_status,root_mount_mode\n"

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	days := flag.Int("days", 7, "number of past days (including today) with reports")
	interval := flag.Duration("interval", time.Minute, "sampling interval of generated rows")
	writeDir := flag.String("write", "", "write report files into this directory instead of serving them")
	flag.Parse()

	logger := log.New(log.Writer(), "dashboard-mock ", log.LstdFlags|log.Lmicroseconds)

	if *writeDir != "" {
		if err := writeReports(*writeDir, *days, *interval); err != nil {
			logger.Fatalf("write reports: %v", err)
		}
		logger.Printf("wrote %d reports to %s", *days, *writeDir)
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{folder}/{file}", func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseReportName(r.PathValue("file"))
		if !ok || !withinDays(day, *days) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(generateReport(day, *interval)))
	})

	srv := &http.Server{
		Addr:    *addr,
		Handler: logRequests(logger, mux),
	}

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeReports(dir string, days int, interval time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	today := startOfDay(time.Now())
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, -i)
		name := filepath.Join(dir, "report_"+day.Format("2006-01-02")+".csv")
		if err := os.WriteFile(name, []byte(generateReport(day, interval)), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func parseReportName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, "report_") || !strings.HasSuffix(name, ".csv") {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, "report_"), ".csv"), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func withinDays(day time.Time, days int) bool {
	today := startOfDay(time.Now())
	return !day.After(today) && day.After(today.AddDate(0, 0, -days))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// generateReport produces a deterministic day of samples: a daily temperature
// swing that crosses the warning and critical limits in the afternoon, one APC
// restart, a short internet outage and a rising pending-video backlog.
func generateReport(day time.Time, interval time.Duration) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	end := day.Add(24 * time.Hour)
	if now := time.Now(); end.After(now) {
		end = now
	}
	apcDown := day.Add(time.Duration(2+rng.Intn(20)) * time.Hour)
	netDown := day.Add(time.Duration(1+rng.Intn(22)) * time.Hour)

	var b strings.Builder
	b.WriteString(reportHeader)
	pending := 0
	for ts := day; ts.Before(end); ts = ts.Add(interval) {
		// Skip a few samples to leave gaps in the timeline.
		if rng.Float64() < 0.01 {
			continue
		}
		hour := float64(ts.Sub(day)) / float64(time.Hour)
		temp := 72 + 15*math.Sin((hour-9)/24*2*math.Pi) + rng.Float64()*2
		apc := "running"
		if !ts.Before(apcDown) && ts.Before(apcDown.Add(10*time.Minute)) {
			apc = "stopped"
		}
		internet := "connected"
		if !ts.Before(netDown) && ts.Before(netDown.Add(5*time.Minute)) {
			internet = "disconnected"
			pending++
		} else if pending > 0 {
			pending--
		}
		fmt.Fprintf(&b, "%s,%.1f,%.1f,%.1f,%.1f,%d,%s,running,%s,%d,up,rw\n",
			ts.Format("2006-01-02T15:04:05"),
			10+rng.Float64()*30,
			55+rng.Float64()*30,
			70+hour/2,
			temp,
			3+rng.Intn(3),
			apc, internet, pending,
		)
	}
	return b.String()
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
