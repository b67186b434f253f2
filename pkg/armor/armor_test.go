package armor_test

import (
	"context"

	"github.com/zuccha/dnd-portal-sub002/pkg/armor"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/store/mock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newArmor(id, name, typ string, ac int) armor.Armor {
	a := armor.Default()
	a.ID = id
	a.CampaignID = "c1"
	a.Visibility = resource.Public
	a.Name = i18n.Text{"en": name}
	a.Type = typ
	a.ArmorClass = ac
	return a
}

func maxDex(n int) *int { return &n }

var _ = Describe("Armor", func() {
	var (
		ctx = context.Background()
		b   *mock.Builder
		s   *armor.Store
	)
	BeforeEach(func() {
		b = mock.NewBuilder(nil)
		deps, err := b.Deps()
		Expect(err).ToNot(HaveOccurred())
		s, err = armor.New(deps, i18n.Keys)
		Expect(err).ToNot(HaveOccurred())
		b.Register(s)

		leather := newArmor("a1", "Leather", "light", 11)
		scale := newArmor("a2", "Scale Mail", "medium", 14)
		scale.MaxDexterityBonus = maxDex(2)
		scale.StealthDisadvantage = true
		plate := newArmor("a3", "Plate", "heavy", 18)
		plate.MaxDexterityBonus = maxDex(0)
		plate.RequiredStrength = 15
		plate.StealthDisadvantage = true
		shield := newArmor("a4", "Shield", "shield", 2)
		Expect(b.Backend.Seed(leather, scale, plate, shield)).To(Succeed())
	})
	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
		Expect(b.Close()).To(Succeed())
	})

	It("Should filter by stealth disadvantage and type", func() {
		stealthy := false
		_, err := s.UpdateFilters(ctx, func(f armor.Filters) armor.Filters {
			f.StealthDisadvantage = &stealthy
			f.Types = resource.Set{"shield": false}
			return f
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(s.ResourceIDs(ctx, "c1")).To(Equal([]string{"a1"}))
	})

	DescribeTable("Should render the armor class",
		func(id, expected string) {
			l, ok := s.LocalizedResource(ctx, id)
			Expect(ok).To(BeTrue())
			Expect(l.ArmorClass).To(Equal(expected))
		},
		Entry("uncapped", "a1", "11 + ability.dex"),
		Entry("capped", "a2", "14 + ability.dex (armor.max 2)"),
		Entry("no dexterity", "a3", "18"),
		Entry("shield", "a4", "+2"),
	)

	It("Should render strength and stealth requirements", func() {
		l, _ := s.LocalizedResource(ctx, "a3")
		Expect(l.Strength).To(Equal("ability.str 15"))
		Expect(l.Stealth).To(Equal("armor.stealth.disadvantage"))
		l, _ = s.LocalizedResource(ctx, "a1")
		Expect(l.Strength).To(BeEmpty())
		Expect(l.Stealth).To(BeEmpty())
	})
})
