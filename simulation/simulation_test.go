package simulation_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/simulation"
)

const sampleTrace = `0 0x0000 R 4
0 0x0004 R 4

0 0x0040 R 4
0 zz R 4
0 0x0000 R 4
`

func twoLevelConfig() *config.Config {
	return &config.Config{
		Caches: []config.LevelConfig{
			{Name: "L1", Size: 64, LineSize: 32, Kind: "direct"},
			{Name: "L2", Size: 256, LineSize: 32, Kind: "2way", ReplacementPolicy: "lru"},
		},
	}
}

var _ = Describe("Simulation", func() {
	var s *simulation.Simulation

	AfterEach(func() {
		if s != nil {
			s.Terminate()
		}
	})

	It("should replay a trace and report the counters", func() {
		var err error
		s, err = simulation.MakeBuilder().WithConfig(twoLevelConfig()).Build()
		Expect(err).ToNot(HaveOccurred())

		report, err := s.Run("sample", strings.NewReader(sampleTrace))

		Expect(err).ToNot(HaveOccurred())
		Expect(s.BadRecords()).To(Equal(1))
		Expect(report).To(Equal(cache.RunReport{
			Caches: []cache.LevelReport{
				{Name: "L1", Hits: 1, Misses: 3},
				{Name: "L2", Hits: 1, Misses: 2},
			},
			MainMemoryAccess: 2,
		}))
	})

	It("should return the configuration error", func() {
		c := twoLevelConfig()
		c.Caches[1].LineSize = 48

		var err error
		s, err = simulation.MakeBuilder().WithConfig(c).Build()

		var confErr *cache.ConfigurationError
		Expect(errors.As(err, &confErr)).To(BeTrue())
		Expect(confErr.Level).To(Equal("L2"))
		Expect(s).To(BeNil())
	})

	It("should panic without configuration", func() {
		Expect(func() { _, _ = simulation.MakeBuilder().Build() }).To(Panic())
	})

	It("should log accesses", func() {
		buf := new(bytes.Buffer)

		var err error
		s, err = simulation.MakeBuilder().
			WithConfig(twoLevelConfig()).
			WithAccessLog(buf).
			Build()
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Run("sample", strings.NewReader("0 0x0000 R 4\n"))
		Expect(err).ToNot(HaveOccurred())

		Expect(buf.String()).To(Equal(
			"L1, 0x0000000000000000, direct_miss, set 0, way 0\n" +
				"L2, 0x0000000000000000, compaction_miss, set 0, way 0\n" +
				"memory, 0x0000000000000000\n"))
	})

	It("should record accesses and run properties", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		var err error
		s, err = simulation.MakeBuilder().
			WithConfig(twoLevelConfig()).
			WithRecording(path).
			Build()
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Run("sample", strings.NewReader(sampleTrace))
		Expect(err).ToNot(HaveOccurred())
		s.Terminate()
		s = nil

		db, err := sql.Open("sqlite3", path+".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		defer db.Close()

		var accesses, memory int
		Expect(db.QueryRow(
			"SELECT COUNT(*) FROM cache_accesses").Scan(&accesses)).To(Succeed())
		Expect(db.QueryRow(
			"SELECT COUNT(*) FROM main_memory_accesses").Scan(&memory)).To(Succeed())
		Expect(accesses).To(Equal(7))
		Expect(memory).To(Equal(2))

		var value string
		Expect(db.QueryRow(
			"SELECT Value FROM exec_info WHERE Property = 'Skipped Records'",
		).Scan(&value)).To(Succeed())
		Expect(value).To(Equal("1"))
	})

	It("should serve the counters while monitored", func() {
		var err error
		s, err = simulation.MakeBuilder().
			WithConfig(twoLevelConfig()).
			WithMonitoring(0).
			WithPublishInterval(2).
			Build()
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Run("sample", strings.NewReader(sampleTrace))
		Expect(err).ToNot(HaveOccurred())

		rsp, err := http.Get(s.MonitorURL() + "/api/summary")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var summary struct {
			MainMemoryAccess uint64 `json:"main_memory_access"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&summary)).To(Succeed())
		Expect(summary.MainMemoryAccess).To(Equal(uint64(2)))

		progress, err := http.Get(s.MonitorURL() + "/api/progress")
		Expect(err).ToNot(HaveOccurred())
		defer progress.Body.Close()

		var bars []json.RawMessage
		Expect(json.NewDecoder(progress.Body).Decode(&bars)).To(Succeed())
		Expect(bars).To(BeEmpty())

		metrics, err := http.Get(s.MonitorURL() + "/metrics")
		Expect(err).ToNot(HaveOccurred())
		defer metrics.Body.Close()
		Expect(metrics.StatusCode).To(Equal(http.StatusOK))
	})
})
