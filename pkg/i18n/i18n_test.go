package i18n_test

import (
	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Text", func() {
	Describe("In", func() {
		It("Should fall back to english, then the first language, then empty", func() {
			Expect(i18n.Text{"en": "Dagger", "it": "Pugnale"}.In("it")).To(Equal("Pugnale"))
			Expect(i18n.Text{"en": "Dagger", "it": "Pugnale"}.In("fr")).To(Equal("Dagger"))
			Expect(i18n.Text{"it": "Pugnale", "de": "Dolch"}.In("fr")).To(Equal("Dolch"))
			Expect(i18n.Text{}.In("en")).To(BeEmpty())
			Expect(i18n.Text(nil).In("en")).To(BeEmpty())
		})
	})

	Describe("Merge", func() {
		It("Should keep languages missing from the update", func() {
			prev := i18n.Text{"en": "Dagger", "it": "Pugnale"}
			merged := prev.Merge(i18n.Text{"en": "Small Dagger"})
			Expect(merged).To(Equal(i18n.Text{"en": "Small Dagger", "it": "Pugnale"}))
			Expect(prev).To(HaveKeyWithValue("en", "Dagger"))
		})
		It("Should merge page numbers per language", func() {
			merged := i18n.Number{"en": 10}.Merge(i18n.Number{"it": 12})
			Expect(merged).To(Equal(i18n.Number{"en": 10, "it": 12}))
		})
	})

	Describe("Matches", func() {
		It("Should ignore case and diacritics", func() {
			Expect(i18n.Text{"fr": "Épée"}.Matches("epee")).To(BeTrue())
			Expect(i18n.Text{"en": "Longsword"}.Matches("SWORD")).To(BeTrue())
			Expect(i18n.Text{"en": "Longsword"}.Matches("dagger")).To(BeFalse())
		})
		It("Should match any language", func() {
			Expect(i18n.Text{"en": "Dagger", "it": "Pugnale"}.Matches("pugn")).To(BeTrue())
		})
		It("Should match everything with an empty needle", func() {
			Expect(i18n.Text{}.Matches("")).To(BeTrue())
		})
	})
})

var _ = Describe("Normalize", func() {
	It("Should strip combining marks and lowercase", func() {
		Expect(i18n.Normalize("Épée")).To(Equal("epee"))
		Expect(i18n.Normalize("Città")).To(Equal("citta"))
		Expect(i18n.Normalize("DAGGER")).To(Equal("dagger"))
	})
})

var _ = Describe("ParseLang", func() {
	It("Should return the base code of a supported language", func() {
		Expect(i18n.ParseLang("en")).To(Equal("en"))
		Expect(i18n.ParseLang("it-CH")).To(Equal("it"))
	})
	It("Should reject malformed and unsupported codes", func() {
		_, err := i18n.ParseLang("not a language")
		Expect(err).To(HaveOccurred())
		_, err = i18n.ParseLang("ja")
		Expect(errors.Is(err, i18n.ErrUnsupportedLang)).To(BeTrue())
	})
})

var _ = Describe("StaticLocale", func() {
	It("Should notify only on actual changes", func() {
		l := i18n.NewStaticLocale("en")
		var seen []string
		d := l.OnChange(func(lang string) { seen = append(seen, lang) })
		l.Set("en")
		l.Set("it")
		d()
		l.Set("en")
		Expect(seen).To(Equal([]string{"it"}))
		Expect(l.Lang()).To(Equal("en"))
	})
})

var _ = Describe("Keys", func() {
	It("Should return the key untranslated", func() {
		Expect(i18n.Keys.Translate("it", "weapon.type.simple")).To(Equal("weapon.type.simple"))
	})
})

var _ = Describe("Table", func() {
	t := i18n.Table{"unit.gp": {"en": "gp", "it": "mo"}}
	It("Should translate known keys with the usual fallback", func() {
		Expect(t.Translate("it", "unit.gp")).To(Equal("mo"))
		Expect(t.Translate("fr", "unit.gp")).To(Equal("gp"))
	})
	It("Should return unknown keys untranslated", func() {
		Expect(t.Translate("it", "unit.sp")).To(Equal("unit.sp"))
	})
})

var _ = Describe("Codes", func() {
	It("Should list the base codes of the supported languages", func() {
		Expect(i18n.Codes()).To(Equal([]string{"en", "it"}))
	})
})
