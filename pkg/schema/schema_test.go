package schema_test

import (
	"github.com/cockroachdb/errors"
	"github.com/zuccha/dnd-portal-sub002/pkg/schema"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type item struct {
	ID     string            `json:"id"`
	Name   map[string]string `json:"name"`
	Weight int               `json:"weight"`
	Tags   []string          `json:"tags"`
	Kinds  map[string]bool   `json:"kinds"`
}

var itemSchema = schema.New("item", map[string]schema.Field{
	"id":     {Type: schema.String, Required: true},
	"name":   {Type: schema.Text, Required: true},
	"weight": {Type: schema.Integer},
	"tags":   {Type: schema.StringSlice, Enum: []string{"light", "heavy"}},
	"kinds":  {Type: schema.Set, Enum: []string{"simple", "martial"}},
})

var _ = Describe("Schema", func() {
	Describe("Parse", func() {
		It("Should decode a valid value", func() {
			v, err := schema.Parse[item](itemSchema, []byte(`{
				"id": "w1",
				"name": {"en": "Dagger"},
				"weight": 1,
				"tags": ["light"],
				"kinds": {"simple": true}
			}`))
			Expect(err).ToNot(HaveOccurred())
			Expect(v.ID).To(Equal("w1"))
			Expect(v.Name).To(HaveKeyWithValue("en", "Dagger"))
			Expect(v.Kinds).To(HaveKeyWithValue("simple", true))
		})
		It("Should ignore undeclared fields", func() {
			_, err := schema.Parse[item](itemSchema, []byte(`{"id": "w1", "name": {}, "extra": 3}`))
			Expect(err).ToNot(HaveOccurred())
		})
		It("Should list every failing field", func() {
			_, err := schema.Parse[item](itemSchema, []byte(`{"name": {"en": 3}, "weight": 1.5}`))
			var verr *schema.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Schema).To(Equal("item"))
			fields := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = f.Field
			}
			Expect(fields).To(Equal([]string{"id", "name", "weight"}))
		})
		It("Should reject values outside the enum", func() {
			_, err := schema.Parse[item](itemSchema, []byte(`{"id": "w1", "name": {}, "kinds": {"exotic": true}}`))
			Expect(err).To(MatchError(ContainSubstring(`"exotic" is not one of simple, martial`)))
		})
		It("Should reject malformed JSON and null", func() {
			_, err := schema.Parse[item](itemSchema, []byte(`{`))
			Expect(err).To(HaveOccurred())
			_, err = schema.Parse[item](itemSchema, []byte(`null`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Range", func() {
		It("Should accept partial bounds and reject unknown keys", func() {
			Expect(schema.Range.AssertValue(map[string]interface{}{"min": 1.0})).To(BeTrue())
			Expect(schema.Range.AssertValue(map[string]interface{}{"max": nil})).To(BeTrue())
			Expect(schema.Range.AssertValue(map[string]interface{}{"avg": 1.0})).To(BeFalse())
			Expect(schema.Range.AssertValue(map[string]interface{}{"min": "1"})).To(BeFalse())
		})
	})

	Describe("ParseOr", func() {
		It("Should return the fallback on any failure", func() {
			def := item{ID: "default"}
			Expect(schema.ParseOr(itemSchema, []byte(`"garbage"`), def)).To(Equal(def))
			Expect(schema.ParseOr(itemSchema, []byte(`{"id": 4}`), def)).To(Equal(def))
		})
	})

	Describe("ParseSlice", func() {
		It("Should fail the whole slice when one element is invalid", func() {
			_, err := schema.ParseSlice[item](itemSchema, []byte(`[{"id": "a", "name": {}}, {"id": "b"}]`))
			Expect(err).To(MatchError(ContainSubstring("element 1")))
		})
		It("Should decode every element", func() {
			v, err := schema.ParseSlice[item](itemSchema, []byte(`[{"id": "a", "name": {}}, {"id": "b", "name": {}}]`))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(HaveLen(2))
		})
	})

	Describe("Extend", func() {
		It("Should add fields without modifying the base", func() {
			ext := itemSchema.Extend("heavy_item", map[string]schema.Field{
				"cost": {Type: schema.Number, Required: true},
			})
			Expect(ext.Fields).To(HaveKey("cost"))
			Expect(ext.Fields).To(HaveKey("id"))
			Expect(itemSchema.Fields).ToNot(HaveKey("cost"))
		})
	})

	Describe("Check", func() {
		It("Should validate a Go value through its encoding", func() {
			Expect(schema.Check(itemSchema, item{ID: "a", Name: map[string]string{}})).To(Succeed())
			Expect(schema.Check(itemSchema, item{ID: "a"})).ToNot(Succeed())
		})
	})
})
