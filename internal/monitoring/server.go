package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"rent-backend/internal/models"
	"rent-backend/internal/repositories"
)

// MonitoringServer is the internal ops dashboard on its own port. It is
// never exposed publicly; it reports process/database health and the
// state of the payment pipeline, and pushes alerts over websocket.
type MonitoringServer struct {
	db         *pgxpool.Pool
	payments   *repositories.PaymentRepository
	port       int
	alerts     []Alert
	alertsMux  sync.RWMutex
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Alert
}

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

type DashboardStats struct {
	DatabaseStatus    string `json:"database_status"`
	ActiveConnections int    `json:"active_connections"`
	ResponseTime      int64  `json:"response_time_ms"`
	DBSize            string `json:"db_size"`
	Uptime            string `json:"uptime"`

	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`

	ActiveAlerts int `json:"active_alerts"`

	Payments      *models.PaymentSummary `json:"payments"`
	StalePending  int                    `json:"stale_pending"`
	RecentSettled []*models.Payment      `json:"recent_settled"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, payments *repositories.PaymentRepository, port int) *MonitoringServer {
	return &MonitoringServer{
		db:        db,
		payments:  payments,
		port:      port,
		alerts:    make([]Alert, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Alert),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	// Dashboard page
	r.HandleFunc("/", ms.dashboardPage).Methods("GET")

	// API endpoints
	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", ms.getAlerts).Methods("GET")

	// WebSocket for real-time updates
	r.HandleFunc("/ws", ms.handleWebSocket)

	// Start background alert broadcaster
	go ms.handleBroadcast()

	// Start background health checker
	go ms.monitorHealth()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("Monitoring dashboard running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *MonitoringServer) dashboardPage(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("dashboard").Parse(dashboardHTML))
	tmpl.Execute(w, nil)
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	// Get active connections
	var activeConns int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	// Get database size
	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)
	dbSize := formatBytes(uint64(dbSizeBytes))

	// Get database uptime
	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)
	uptime := formatUptime(uptimeSec)

	// System metrics
	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	// Payment pipeline state
	summary, err := ms.payments.GetSummary(ctx, nil, nil)
	if err != nil {
		log.Printf("[Monitoring] Failed to load payment summary: %v", err)
		summary = &models.PaymentSummary{}
	}

	stale, err := ms.payments.GetStalePending(ctx, time.Now().Add(-time.Hour), 500)
	if err != nil {
		log.Printf("[Monitoring] Failed to count stale payments: %v", err)
	}

	recent, err := ms.payments.GetRecentSettled(ctx, 10)
	if err != nil {
		log.Printf("[Monitoring] Failed to load recent settlements: %v", err)
	}

	// Count alerts
	ms.alertsMux.RLock()
	activeAlertCount := 0
	for _, alert := range ms.alerts {
		if !alert.Resolved {
			activeAlertCount++
		}
	}
	ms.alertsMux.RUnlock()

	return DashboardStats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		DBSize:            dbSize,
		Uptime:            uptime,
		CPUPercent:        cpuPercent,
		MemoryPercent:     memStats.UsedPercent,
		MemoryUsed:        formatBytes(memStats.Used),
		MemoryTotal:       formatBytes(memStats.Total),
		DiskPercent:       diskStats.UsedPercent,
		DiskUsed:          formatBytes(diskStats.Used),
		DiskTotal:         formatBytes(diskStats.Total),
		ActiveAlerts:      activeAlertCount,
		Payments:          summary,
		StalePending:      len(stale),
		RecentSettled:     recent,
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	ms.alertsMux.RLock()
	defer ms.alertsMux.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ms.alerts)
}

func (ms *MonitoringServer) raiseAlert(severity, alertType, message string) {
	alert := Alert{
		Severity:  severity,
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
	}

	ms.alertsMux.Lock()
	alert.ID = len(ms.alerts) + 1
	ms.alerts = append(ms.alerts, alert)
	ms.alertsMux.Unlock()

	ms.broadcast <- alert
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for alert := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			err := client.WriteJSON(alert)
			if err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

func (ms *MonitoringServer) monitorHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := ms.collectStats()

		if stats.DatabaseStatus == "unhealthy" {
			ms.raiseAlert("critical", "database_down", "Database is unreachable")
		}

		if stats.ResponseTime > 1000 {
			ms.raiseAlert("warning", "high_latency",
				fmt.Sprintf("Database response time: %dms", stats.ResponseTime))
		}

		// Payments stuck PENDING past the webhook window usually mean
		// notifications are not reaching us
		if stats.StalePending > 25 {
			ms.raiseAlert("warning", "stale_payments",
				fmt.Sprintf("%d payments pending for over an hour", stats.StalePending))
		}
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>rent-backend monitoring</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
h1 { color: #6cf; }
.card { background: #1c1c1c; border: 1px solid #333; padding: 1em; margin: 0.5em 0; }
.alert-critical { color: #f66; }
.alert-warning { color: #fc6; }
</style>
</head>
<body>
<h1>rent-backend</h1>
<div class="card"><pre id="stats">loading...</pre></div>
<div class="card"><h3>Alerts</h3><div id="alerts"></div></div>
<script>
async function refresh() {
  const res = await fetch('/api/stats');
  document.getElementById('stats').textContent = JSON.stringify(await res.json(), null, 2);
}
refresh();
setInterval(refresh, 10000);

const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = (ev) => {
  const a = JSON.parse(ev.data);
  const div = document.createElement('div');
  div.className = 'alert-' + a.severity;
  div.textContent = '[' + a.severity + '] ' + a.message + ' (' + a.timestamp + ')';
  document.getElementById('alerts').prepend(div);
};
</script>
</body>
</html>
`
