package mockapi

import (
	"sort"
	"strings"
)

type Movie struct {
	IMDbID     string   `json:"imdbId"`
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	Director   string   `json:"director"`
	Genre      []string `json:"genre"`
	Runtime    int      `json:"runtime"`
	IMDbRating float64  `json:"imdbRating"`
}

type MovieList struct {
	Movies        []Movie `json:"movies"`
	TotalElements int     `json:"totalElements"`
	TotalPages    int     `json:"totalPages"`
	CurrentPage   int     `json:"currentPage"`
	PageSize      int     `json:"pageSize"`
}

type MovieStats struct {
	GenreDistribution    map[string]int     `json:"genreDistribution"`
	AverageRatingByGenre map[string]float64 `json:"averageRatingByGenre"`
	OverallAverageRating float64            `json:"overallAverageRating"`
	TotalMovies          int                `json:"totalMovies"`
}

// DefaultCatalogue holds every movie ID the stress harness asks for.
var DefaultCatalogue = []Movie{
	{IMDbID: "tt0133093", Title: "The Matrix", Year: 1999, Director: "Lana Wachowski, Lilly Wachowski", Genre: []string{"Action", "Sci-Fi"}, Runtime: 136, IMDbRating: 8.7},
	{IMDbID: "tt0468569", Title: "The Dark Knight", Year: 2008, Director: "Christopher Nolan", Genre: []string{"Action", "Crime", "Drama"}, Runtime: 152, IMDbRating: 9.0},
	{IMDbID: "tt1375666", Title: "Inception", Year: 2010, Director: "Christopher Nolan", Genre: []string{"Action", "Adventure", "Sci-Fi"}, Runtime: 148, IMDbRating: 8.8},
	{IMDbID: "tt0816692", Title: "Interstellar", Year: 2014, Director: "Christopher Nolan", Genre: []string{"Adventure", "Drama", "Sci-Fi"}, Runtime: 169, IMDbRating: 8.7},
	{IMDbID: "tt0167260", Title: "The Lord of the Rings: The Return of the King", Year: 2003, Director: "Peter Jackson", Genre: []string{"Action", "Adventure", "Drama"}, Runtime: 201, IMDbRating: 9.0},
	{IMDbID: "tt0372784", Title: "Batman Begins", Year: 2005, Director: "Christopher Nolan", Genre: []string{"Action", "Crime", "Drama"}, Runtime: 140, IMDbRating: 8.2},
	{IMDbID: "tt0848228", Title: "The Avengers", Year: 2012, Director: "Joss Whedon", Genre: []string{"Action", "Sci-Fi"}, Runtime: 143, IMDbRating: 8.0},
	{IMDbID: "tt0076759", Title: "Star Wars", Year: 1977, Director: "George Lucas", Genre: []string{"Action", "Adventure", "Fantasy"}, Runtime: 121, IMDbRating: 8.6},
}

type catalogue struct {
	movies []Movie
	byID   map[string]Movie
}

func newCatalogue(movies []Movie) *catalogue {
	c := &catalogue{
		movies: movies,
		byID:   make(map[string]Movie, len(movies)),
	}
	for _, m := range movies {
		c.byID[m.IMDbID] = m
	}
	return c
}

func (c *catalogue) get(id string) (Movie, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// search filters by case-insensitive title match, sorts and pages. Unknown
// sort keys keep catalogue order.
func (c *catalogue) search(query, sortBy, order string, page, size int) MovieList {
	query = strings.ToLower(strings.TrimSpace(query))

	matches := make([]Movie, 0, len(c.movies))
	for _, m := range c.movies {
		if query == "" || strings.Contains(strings.ToLower(m.Title), query) {
			matches = append(matches, m)
		}
	}

	less := func(i, j int) bool { return false }
	switch sortBy {
	case "rating":
		less = func(i, j int) bool { return matches[i].IMDbRating < matches[j].IMDbRating }
	case "year":
		less = func(i, j int) bool { return matches[i].Year < matches[j].Year }
	case "title":
		less = func(i, j int) bool { return matches[i].Title < matches[j].Title }
	}

	if strings.EqualFold(order, "desc") {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(matches, less)

	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}

	list := MovieList{
		Movies:        []Movie{},
		TotalElements: len(matches),
		TotalPages:    (len(matches) + size - 1) / size,
		CurrentPage:   page,
		PageSize:      size,
	}

	start := page * size
	if start < len(matches) {
		end := min(start+size, len(matches))
		list.Movies = matches[start:end]
	}

	return list
}

func (c *catalogue) stats() MovieStats {
	stats := MovieStats{
		GenreDistribution:    make(map[string]int),
		AverageRatingByGenre: make(map[string]float64),
		TotalMovies:          len(c.movies),
	}

	if len(c.movies) == 0 {
		return stats
	}

	sums := make(map[string]float64)
	var total float64
	for _, m := range c.movies {
		total += m.IMDbRating
		for _, g := range m.Genre {
			stats.GenreDistribution[g]++
			sums[g] += m.IMDbRating
		}
	}

	for g, sum := range sums {
		stats.AverageRatingByGenre[g] = sum / float64(stats.GenreDistribution[g])
	}
	stats.OverallAverageRating = total / float64(len(c.movies))

	return stats
}
