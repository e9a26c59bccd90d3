package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Category Handler", func() {
	var handler *category.Handler

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service, err := category.NewService(category.DefaultCategories(), slogger)
		Expect(err).NotTo(HaveOccurred())
		handler = category.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(6))
		for _, cat := range response.Categories {
			Expect(cat.Name).NotTo(BeEmpty())
			Expect(cat.Color).To(HavePrefix("#"))
		}
	})
})
