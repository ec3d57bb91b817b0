package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// LevelSnapshot is the state of a cache level at the time it was published.
type LevelSnapshot struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Policy    string `json:"policy"`
	Size      uint64 `json:"size"`
	LineSize  uint64 `json:"line_size"`
	NumSets   uint64 `json:"num_sets"`
	NumWays   int    `json:"num_ways"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Monitor turns a simulation into a server so that it can be observed while
// it runs. The simulation goroutine publishes snapshots; the server only
// reads the snapshots.
type Monitor struct {
	portNumber int
	gatherer   prometheus.Gatherer

	snapshotLock     sync.RWMutex
	levels           []LevelSnapshot
	mainMemoryAccess uint64
	publishedAt      time.Time

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithGatherer sets where the /metrics endpoint collects metrics from. Without
// a gatherer, /metrics serves prometheus.DefaultGatherer.
func (m *Monitor) WithGatherer(g prometheus.Gatherer) *Monitor {
	m.gatherer = g
	return m
}

// Publish copies the counters of every level of h. It must be called from the
// goroutine that drives h.
func (m *Monitor) Publish(h *cache.Hierarchy) {
	levels := make([]LevelSnapshot, 0, len(h.Levels()))

	for _, l := range h.Levels() {
		g := l.Geometry()
		levels = append(levels, LevelSnapshot{
			Name:      l.Name(),
			Kind:      g.Kind.String(),
			Policy:    l.Policy().String(),
			Size:      g.Size,
			LineSize:  g.LineSize,
			NumSets:   g.SetNum(),
			NumWays:   g.SetSize(),
			Hits:      l.Hits(),
			Misses:    l.Misses(),
			Evictions: l.Evictions(),
		})
	}

	m.snapshotLock.Lock()
	defer m.snapshotLock.Unlock()

	m.levels = levels
	m.mainMemoryAccess = h.MainMemoryAccess()
	m.publishedAt = time.Now()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP handler that serves the monitoring API.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.HandleFunc("/api/summary", m.summary)
	r.HandleFunc("/api/list_levels", m.listLevels)
	r.HandleFunc("/api/level/{name}", m.levelDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server and returns its URL. The
// server runs until the process exits.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()

	return url
}

// OpenBrowser opens the monitoring page in the default browser.
func OpenBrowser(url string) {
	err := browser.OpenURL(url + "/api/summary")
	if err != nil {
		log.Printf("cannot open browser: %v", err)
	}
}

type summaryRsp struct {
	Levels           []LevelSnapshot `json:"levels"`
	MainMemoryAccess uint64          `json:"main_memory_access"`
	PublishedAt      time.Time       `json:"published_at"`
}

func (m *Monitor) summary(w http.ResponseWriter, _ *http.Request) {
	m.snapshotLock.RLock()
	rsp := summaryRsp{
		Levels:           m.levels,
		MainMemoryAccess: m.mainMemoryAccess,
		PublishedAt:      m.publishedAt,
	}
	m.snapshotLock.RUnlock()

	writeJSON(w, rsp)
}

func (m *Monitor) listLevels(w http.ResponseWriter, _ *http.Request) {
	m.snapshotLock.RLock()
	defer m.snapshotLock.RUnlock()

	names := make([]string, 0, len(m.levels))
	for _, l := range m.levels {
		names = append(names, l.Name)
	}

	writeJSON(w, names)
}

func (m *Monitor) levelDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	level, found := m.findLevel(name)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Level not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&level)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findLevel(name string) (LevelSnapshot, bool) {
	m.snapshotLock.RLock()
	defer m.snapshotLock.RUnlock()

	for _, l := range m.levels {
		if l.Name == name {
			return l, true
		}
	}

	return LevelSnapshot{}, false
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
