package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/periodic/internal/models"
	"github.com/tupyy/periodic/internal/store"
	"github.com/tupyy/periodic/internal/store/migrations"
)

var _ = Describe("HistoryStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newRun := func(task string, started time.Time, outcome models.RunOutcome) models.TaskRun {
		return models.TaskRun{
			Task:     task,
			Started:  started,
			Duration: 25 * time.Millisecond,
			Outcome:  outcome,
		}
	}

	Context("Insert and List", func() {
		// Given an empty journal
		// When nothing has been inserted
		// Then List returns no runs
		It("should return no runs on an empty journal", func() {
			runs, err := s.History().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		})

		// Given journaled runs for two tasks
		// When we list them
		// Then the most recent run comes first
		It("should list runs most recent first", func() {
			// Arrange
			base := time.Now().Truncate(time.Millisecond)
			Expect(s.History().Insert(ctx, newRun("heartbeat", base, models.RunOutcomeContinue))).To(Succeed())
			Expect(s.History().Insert(ctx, newRun("prune", base.Add(time.Second), models.RunOutcomeContinue))).To(Succeed())

			// Act
			runs, err := s.History().List(ctx)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].Task).To(Equal("prune"))
			Expect(runs[1].Task).To(Equal("heartbeat"))
			Expect(runs[1].Started).To(BeTemporally("==", base))
			Expect(runs[1].Duration).To(Equal(25 * time.Millisecond))
		})

		It("should filter by task name", func() {
			base := time.Now()
			Expect(s.History().Insert(ctx, newRun("heartbeat", base, models.RunOutcomeContinue))).To(Succeed())
			Expect(s.History().Insert(ctx, newRun("prune", base, models.RunOutcomeError))).To(Succeed())

			runs, err := s.History().List(ctx, store.WithTask("prune"))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Outcome).To(Equal(models.RunOutcomeError))
		})

		It("should filter by time and limit", func() {
			base := time.Now()
			for i := range 5 {
				Expect(s.History().Insert(ctx, newRun("heartbeat", base.Add(time.Duration(i)*time.Second), models.RunOutcomeContinue))).To(Succeed())
			}

			runs, err := s.History().List(ctx, store.WithSince(base.Add(2*time.Second)), store.WithLimit(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
		})
	})

	Context("Count", func() {
		It("should count journaled runs", func() {
			base := time.Now()
			for range 3 {
				Expect(s.History().Insert(ctx, newRun("heartbeat", base, models.RunOutcomeContinue))).To(Succeed())
			}

			count, err := s.History().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})
	})

	Context("Prune", func() {
		// Given more journaled runs than the retention limit
		// When we prune
		// Then only the most recent runs survive
		It("should keep only the most recent runs", func() {
			// Arrange
			base := time.Now()
			for i := range 10 {
				Expect(s.History().Insert(ctx, newRun("heartbeat", base.Add(time.Duration(i)*time.Second), models.RunOutcomeContinue))).To(Succeed())
			}

			// Act
			Expect(s.History().Prune(ctx, 4)).To(Succeed())

			// Assert
			runs, err := s.History().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(4))
			Expect(runs[0].Started).To(BeTemporally("~", base.Add(9*time.Second), time.Millisecond))
		})
	})
})
