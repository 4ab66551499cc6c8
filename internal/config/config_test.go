package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/periodic/internal/config"
)

var _ = Describe("Configuration", func() {
	writeConfig := func(content string) string {
		path := filepath.Join(GinkgoT().TempDir(), "periodic.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	It("should fill in defaults for unset fields", func() {
		path := writeConfig(`
tasks:
  - name: heartbeat
`)
		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.LogLevel).To(Equal("info"))
		Expect(cfg.Workers).To(Equal(4))
		Expect(cfg.HistorySize).To(Equal(128))
		Expect(cfg.Database.Path).To(Equal("periodic.db"))
		Expect(cfg.Tasks).To(HaveLen(1))
		Expect(cfg.Tasks[0].Kind).To(Equal("heartbeat"))
		Expect(cfg.Tasks[0].RepeatDelay).To(Equal(10 * time.Second))
	})

	It("should parse delays as durations", func() {
		path := writeConfig(`
workers: 2
tasks:
  - name: stats
    kind: runtime-stats
    start_delay: 500ms
    repeat_delay: 1m
`)
		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Workers).To(Equal(2))
		Expect(cfg.Tasks[0].StartDelay).To(Equal(500 * time.Millisecond))
		Expect(cfg.Tasks[0].RepeatDelay).To(Equal(time.Minute))
	})

	It("should reject a task without a name", func() {
		path := writeConfig(`
tasks:
  - kind: heartbeat
`)
		_, err := config.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a missing config file", func() {
		_, err := config.Load("/does/not/exist.yaml")
		Expect(err).To(HaveOccurred())
	})
})
