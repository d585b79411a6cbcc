package mockapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/movieflix-keepalive/internal/mockapi"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

var _ = Describe("Mock API", func() {
	var (
		server *httptest.Server
		opts   mockapi.Options
	)

	BeforeEach(func() {
		opts = mockapi.Options{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
	})

	JustBeforeEach(func() {
		server = httptest.NewServer(mockapi.NewHandler(opts))
	})

	AfterEach(func() {
		server.Close()
	})

	get := func(path, token string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		Expect(err).NotTo(HaveOccurred())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	login := func(username, password string) *http.Response {
		body, _ := json.Marshal(mockapi.LoginRequest{Username: username, Password: password})
		resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	token := func() string {
		resp := login("user", "user123")
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var env envelope[mockapi.LoginResponse]
		Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
		return env.Data.Token
	}

	Describe("health endpoints", func() {
		It("should answer ping with pong", func() {
			resp := get("/api/health/ping", "")
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(Equal("pong"))
		})

		It("should report UP", func() {
			resp := get("/api/health", "")
			defer resp.Body.Close()

			var env envelope[map[string]string]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(env.Data).To(HaveKeyWithValue("status", "UP"))
		})

		It("should serve the frontend page", func() {
			resp := get("/", "")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))
		})

		Context("when health is failing", func() {
			BeforeEach(func() {
				opts.FailHealth = true
			})

			It("should return 500 on every health endpoint", func() {
				for _, path := range []string{"/api/health", "/api/health/ping", "/api/health/detailed"} {
					resp := get(path, "")
					resp.Body.Close()
					Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError), path)
				}
			})
		})
	})

	Describe("login", func() {
		It("should issue a token for valid credentials", func() {
			Expect(token()).NotTo(BeEmpty())
		})

		It("should issue distinct tokens", func() {
			Expect(token()).NotTo(Equal(token()))
		})

		It("should reject a wrong password", func() {
			resp := login("admin", "nope")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("should reject malformed bodies", func() {
			resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewBufferString("{"))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("catalogue endpoints", func() {
		It("should require a token", func() {
			for _, path := range []string{"/api/movies", "/api/movies/tt0133093", "/api/stats"} {
				resp := get(path, "")
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), path)
			}
		})

		It("should reject unknown tokens", func() {
			resp := get("/api/movies", "forged")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("should browse sorted by rating", func() {
			resp := get("/api/movies?sort=rating&order=desc&page=0&size=50", token())
			defer resp.Body.Close()

			var env envelope[mockapi.MovieList]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(env.Data.TotalElements).To(Equal(len(mockapi.DefaultCatalogue)))
			Expect(env.Data.Movies[0].IMDbRating).To(Equal(9.0))
			Expect(env.Data.Movies[len(env.Data.Movies)-1].IMDbRating).To(Equal(8.0))
		})

		It("should search by title", func() {
			resp := get("/api/movies?search=batman&size=12", token())
			defer resp.Body.Close()

			var env envelope[mockapi.MovieList]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(env.Data.TotalElements).To(Equal(1))
			Expect(env.Data.Movies[0].Title).To(Equal("Batman Begins"))
		})

		It("should page results", func() {
			resp := get("/api/movies?size=3&page=2", token())
			defer resp.Body.Close()

			var env envelope[mockapi.MovieList]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(env.Data.TotalPages).To(Equal(3))
			Expect(env.Data.Movies).To(HaveLen(2))
		})

		It("should reject a non-numeric page", func() {
			resp := get("/api/movies?page=first", token())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("should return movie details", func() {
			resp := get("/api/movies/tt1375666", token())
			defer resp.Body.Close()

			var env envelope[mockapi.Movie]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(env.Data.Title).To(Equal("Inception"))
		})

		It("should return 404 for unknown movies", func() {
			resp := get("/api/movies/tt0000000", token())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should summarise the catalogue", func() {
			resp := get("/api/stats", token())
			defer resp.Body.Close()

			var env envelope[mockapi.MovieStats]
			Expect(json.NewDecoder(resp.Body).Decode(&env)).To(Succeed())
			Expect(env.Data.TotalMovies).To(Equal(len(mockapi.DefaultCatalogue)))
			Expect(env.Data.GenreDistribution).To(HaveKeyWithValue("Action", 7))
		})
	})
})
