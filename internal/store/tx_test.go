package store_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/store"
	"github.com/frahmantamala/backoffice/internal/store/storetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type widget struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

var _ = Describe("TxManager", func() {
	var (
		db  *gorm.DB
		txm *store.TxManager
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.Open(&widget{})
		Expect(err).NotTo(HaveOccurred())
		txm = store.NewTxManager(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	count := func() int64 {
		var n int64
		Expect(db.Model(&widget{}).Count(&n).Error).NotTo(HaveOccurred())
		return n
	}

	It("commits every write made through Conn", func() {
		err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := store.Conn(ctx, db).Create(&widget{Name: "a"}).Error; err != nil {
				return err
			}
			return store.Conn(ctx, db).Create(&widget{Name: "b"}).Error
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(count()).To(Equal(int64(2)))
	})

	It("rolls back all writes when fn fails", func() {
		boom := errors.New("boom")
		err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
			Expect(store.Conn(ctx, db).Create(&widget{Name: "a"}).Error).NotTo(HaveOccurred())
			return boom
		})
		Expect(err).To(MatchError(boom))
		Expect(count()).To(BeZero())
	})

	It("joins the outer transaction on nested calls", func() {
		boom := errors.New("outer failed")
		err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
			inner := txm.WithinTransaction(ctx, func(ctx context.Context) error {
				return store.Conn(ctx, db).Create(&widget{Name: "nested"}).Error
			})
			Expect(inner).NotTo(HaveOccurred())
			return boom
		})
		Expect(err).To(MatchError(boom))
		Expect(count()).To(BeZero())
	})

	It("runs AfterCommit hooks only after a commit", func() {
		var fired []string
		Expect(txm.WithinTransaction(ctx, func(ctx context.Context) error {
			store.AfterCommit(ctx, func() { fired = append(fired, "committed") })
			Expect(fired).To(BeEmpty())
			return nil
		})).To(Succeed())
		Expect(fired).To(Equal([]string{"committed"}))

		_ = txm.WithinTransaction(ctx, func(ctx context.Context) error {
			store.AfterCommit(ctx, func() { fired = append(fired, "rolled back") })
			return errors.New("nope")
		})
		Expect(fired).To(Equal([]string{"committed"}))
	})

	It("runs AfterCommit immediately outside a transaction", func() {
		ran := false
		store.AfterCommit(ctx, func() { ran = true })
		Expect(ran).To(BeTrue())
	})

	It("translates duplicate keys into conflicts", func() {
		Expect(db.Create(&widget{Name: "dup"}).Error).NotTo(HaveOccurred())
		err := store.Translate(db.Create(&widget{Name: "dup"}).Error)
		Expect(errors.Is(err, internal.ErrAlreadyExists)).To(BeTrue())
	})
})
