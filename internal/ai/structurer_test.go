package ai

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeChatProvider struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeChatProvider) Close() error { return nil }

var _ = Describe("Structurer", func() {
	var (
		provider   *fakeChatProvider
		structurer *Structurer
		parsed     map[string]interface{}
		err        error
	)

	BeforeEach(func() {
		provider = &fakeChatProvider{}
	})

	JustBeforeEach(func() {
		structurer = NewStructurer(provider)
		parsed, err = structurer.Structure(context.Background(), "STORE A\nTOTAL 17.98")
	})

	When("the model returns plain JSON", func() {
		BeforeEach(func() {
			provider.reply = `{"merchant": {"name": "STORE A"}}`
		})

		It("decodes the object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(HaveKey("merchant"))
		})

		It("embeds the raw text in the prompt", func() {
			Expect(provider.prompts).To(HaveLen(1))
			Expect(provider.prompts[0]).To(ContainSubstring("STORE A\nTOTAL 17.98"))
		})
	})

	When("the model wraps its JSON in markdown fences", func() {
		BeforeEach(func() {
			provider.reply = "```json\n{\"transaction\": {\"total\": 17.98}}\n```"
		})

		It("strips the fences and decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(HaveKey("transaction"))
		})
	})

	When("a string value contains backticks", func() {
		BeforeEach(func() {
			provider.reply = "```json\n{\"items\": [{\"description\": \"Brand `X` milk\"}]}\n```"
		})

		It("keeps them intact while trimming the outer fence", func() {
			Expect(err).NotTo(HaveOccurred())
			items := parsed["items"].([]interface{})
			item := items[0].(map[string]interface{})
			Expect(item["description"]).To(Equal("Brand `X` milk"))
		})
	})

	When("the provider call fails", func() {
		BeforeEach(func() {
			provider.err = errors.New("openai api error (status 429): rate limited")
		})

		It("wraps the failure as a StructuringError", func() {
			var structuringErr *StructuringError
			Expect(errors.As(err, &structuringErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("429"))
		})
	})

	When("the model reply is not valid JSON", func() {
		BeforeEach(func() {
			provider.reply = "Sure! Here is the receipt data you asked for."
		})

		It("fails with a StructuringError", func() {
			var structuringErr *StructuringError
			Expect(errors.As(err, &structuringErr)).To(BeTrue())
			Expect(parsed).To(BeNil())
		})
	})
})
