package catalog_test

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/armor"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc/memory"
	"github.com/zuccha/dnd-portal-sub002/pkg/spell"
	"github.com/zuccha/dnd-portal-sub002/pkg/store/mock"
	"github.com/zuccha/dnd-portal-sub002/pkg/weapon"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Catalog", func() {
	var (
		ctx = context.Background()
		b   *mock.Builder
		c   *catalog.Catalog
	)
	BeforeEach(func() {
		b = mock.NewBuilder(map[string]string{"c1": "Lost Mine"})
		for _, d := range catalog.Descriptors {
			b.Backend.Register(memory.Kind(d))
		}
		deps, err := b.Deps()
		Expect(err).ToNot(HaveOccurred())
		c, err = catalog.Open(catalog.Config{Deps: deps})
		Expect(err).ToNot(HaveOccurred())

		dagger := weapon.Default()
		dagger.ID, dagger.CampaignID, dagger.Visibility = "w1", "c1", resource.Public
		dagger.Name = i18n.Text{"en": "Dagger", "it": "Pugnale"}
		dagger.DamageType, dagger.Cost = "piercing", 200
		longsword := weapon.Default()
		longsword.ID, longsword.CampaignID, longsword.Visibility = "w2", "c1", resource.Public
		longsword.Name = i18n.Text{"en": "Longsword"}
		longsword.Type, longsword.Damage, longsword.DamageType = "martial", "1d8", "slashing"
		shield := armor.Default()
		shield.ID, shield.CampaignID, shield.Visibility = "a1", "c1", resource.Public
		shield.Name = i18n.Text{"en": "Shield"}
		shield.Type, shield.ArmorClass = "shield", 2
		light := spell.Default()
		light.ID, light.CampaignID, light.Visibility = "s1", "c1", resource.Public
		light.Name = i18n.Text{"en": "Light"}
		light.School = "evocation"
		Expect(b.Backend.Seed(dagger, longsword, shield, light)).To(Succeed())
	})
	AfterEach(func() {
		Expect(c.Close()).To(Succeed())
		Expect(b.Close()).To(Succeed())
	})

	It("Should declare the same translations to the backend as the stores merge", func() {
		for _, d := range catalog.Descriptors {
			k, err := c.Kind(string(d.Kind))
			Expect(err).ToNot(HaveOccurred())
			Expect(k.TranslationNames()).To(Equal(d.Translations))
		}
	})

	Describe("Kind", func() {
		It("Should resolve kinds and plurals", func() {
			k, err := c.Kind("spells")
			Expect(err).ToNot(HaveOccurred())
			Expect(k.Kind()).To(Equal(spell.Kind))
			Expect(c.KindNames()).To(Equal([]resource.Kind{"armor", "spell", "weapon"}))
		})
		It("Should reject unknown kinds", func() {
			_, err := c.Kind("vehicle")
			Expect(errors.Is(err, catalog.ErrUnknownKind)).To(BeTrue())
		})
	})

	Describe("Rows", func() {
		It("Should render the filtered list with its selection", func() {
			k, err := c.Kind("weapon")
			Expect(err).ToNot(HaveOccurred())
			Expect(k.Rows(ctx, "c1")).To(HaveLen(2))
			Expect(k.SetNameFilter(ctx, "DAG")).To(Succeed())
			Expect(k.NameFilter(ctx)).To(Equal("DAG"))
			k.SelectAllResources("c1")
			rows := k.Rows(ctx, "c1")
			Expect(rows).To(HaveLen(1))
			Expect(rows[0]).To(Equal(catalog.Row{
				ID:       "w1",
				Name:     "Dagger",
				Summary:  "Simple · 1d4 piercing · 2 gp",
				Selected: true,
			}))
			Expect(k.ResetFilters(ctx)).To(Succeed())
			Expect(k.Rows(ctx, "c1")).To(HaveLen(2))
			Expect(k.SelectedFilteredResourceIDs("c1")).To(Equal([]string{"w1"}))
		})
	})

	It("Should prefetch every kind once", func() {
		Expect(c.Prefetch(ctx, "c1")).To(Succeed())
		Expect(c.Prefetch(ctx, "c1")).To(Succeed())
		for _, op := range []string{"fetch_weapons", "fetch_armors", "fetch_spells"} {
			Expect(b.Backend.Calls(op)).To(Equal(1))
		}
		Expect(b.Backend.Calls("fetch_resource_options")).To(Equal(3))
		Expect(c.Weapons.ResourceIDs(ctx, "c1")).To(Equal([]string{"w1", "w2"}))
	})

	It("Should delete through the kind-independent face", func() {
		k, err := c.Kind("armors")
		Expect(err).ToNot(HaveOccurred())
		Expect(k.Rows(ctx, "c1")).To(HaveLen(1))
		k.SelectAllResources("c1")
		Expect(k.DeleteResources(ctx, k.SelectedFilteredResourceIDs("c1"))).To(Succeed())
		Expect(k.Rows(ctx, "c1")).To(BeEmpty())
	})
})
