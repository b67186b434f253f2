package storage_test

import (
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/zuccha/dnd-portal-sub002/pkg/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	Describe("Open", func() {
		var dir string
		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "storage")
			Expect(err).ToNot(HaveOccurred())
		})
		AfterEach(func() { Expect(os.RemoveAll(dir)).To(Succeed()) })

		Describe("Acquiring a lock", func() {
			It("Should return an error if the lock is already acquired", func() {
				cfg := storage.Config{Dirname: dir}
				s, err := storage.Open(cfg)
				Expect(err).ToNot(HaveOccurred())
				_, err = storage.Open(cfg)
				Expect(err).To(HaveOccurred())
				Expect(s.Close()).To(Succeed())
			})
			It("Should allow reopening once closed", func() {
				cfg := storage.Config{Dirname: dir}
				s, err := storage.Open(cfg)
				Expect(err).ToNot(HaveOccurred())
				Expect(s.KV.Set([]byte("k"), []byte("v"), pebble.Sync)).To(Succeed())
				Expect(s.Close()).To(Succeed())

				s, err = storage.Open(cfg)
				Expect(err).ToNot(HaveOccurred())
				v, closer, err := s.KV.Get([]byte("k"))
				Expect(err).ToNot(HaveOccurred())
				Expect(string(v)).To(Equal("v"))
				Expect(closer.Close()).To(Succeed())
				Expect(s.Close()).To(Succeed())
			})
		})

		Describe("Memory backed", func() {
			It("Should open without touching disk", func() {
				s, err := storage.Open(storage.Config{Dirname: "mem", MemBacked: true})
				Expect(err).ToNot(HaveOccurred())
				Expect(s.KV.Set([]byte("k"), []byte("v"), pebble.NoSync)).To(Succeed())
				Expect(s.Close()).To(Succeed())
				_, err = os.Stat("mem")
				Expect(os.IsNotExist(err)).To(BeTrue())
			})
		})
	})
})
