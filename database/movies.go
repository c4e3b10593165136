package database

import "strings"

const MoviesTable = "movies"

// ScalarColumn is one column of a table plus where its value comes from in
// the source record.
type ScalarColumn struct {
	Name   string // column name
	Type   string // sqlite column type
	Source string // json key holding the value; empty means the collection element itself
	Parent string // nested object the key lives in ("belongs_to_collection", "external_ids"); empty for top-level
}

// ChildTable maps one nested collection of the input record to its own table.
// Each element becomes one row keyed by movie_id.
type ChildTable struct {
	Name    string // table name
	Field   string // top-level json field holding the collection
	Nested  string // sub-key inside Field holding the element array ("results" for videos); empty otherwise
	Columns []ScalarColumn
}

// MovieColumns returns the ordered scalar schema of the movies table. The
// filtered load guarantees every stored record is non-adult, so the adult
// column is dropped from the schema instead of storing a constant.
func MovieColumns(filtered bool) []ScalarColumn {
	cols := make([]ScalarColumn, 0, 29)
	cols = append(cols, ScalarColumn{Name: "id", Type: "INTEGER PRIMARY KEY", Source: "id"})
	if !filtered {
		cols = append(cols, ScalarColumn{Name: "adult", Type: "INTEGER", Source: "adult"})
	}
	cols = append(cols,
		ScalarColumn{Name: "title", Type: "TEXT", Source: "title"},
		ScalarColumn{Name: "original_title", Type: "TEXT", Source: "original_title"},
		ScalarColumn{Name: "video", Type: "INTEGER", Source: "video"},
		ScalarColumn{Name: "budget", Type: "INTEGER", Source: "budget"},
		ScalarColumn{Name: "revenue", Type: "INTEGER", Source: "revenue"},
		ScalarColumn{Name: "runtime", Type: "INTEGER", Source: "runtime"},
		ScalarColumn{Name: "status", Type: "TEXT", Source: "status"},
		ScalarColumn{Name: "imdb_id", Type: "TEXT", Source: "imdb_id"},
		ScalarColumn{Name: "tagline", Type: "TEXT", Source: "tagline"},
		ScalarColumn{Name: "homepage", Type: "TEXT", Source: "homepage"},
		ScalarColumn{Name: "overview", Type: "TEXT", Source: "overview"},
		ScalarColumn{Name: "popularity", Type: "REAL", Source: "popularity"},
		ScalarColumn{Name: "vote_count", Type: "INTEGER", Source: "vote_count"},
		ScalarColumn{Name: "vote_average", Type: "REAL", Source: "vote_average"},
		ScalarColumn{Name: "release_date", Type: "TEXT", Source: "release_date"},
		ScalarColumn{Name: "original_language", Type: "TEXT", Source: "original_language"},
		ScalarColumn{Name: "poster_path", Type: "TEXT", Source: "poster_path"},
		ScalarColumn{Name: "backdrop_path", Type: "TEXT", Source: "backdrop_path"},

		// flattened belongs_to_collection
		ScalarColumn{Name: "collection_id", Type: "INTEGER", Source: "id", Parent: "belongs_to_collection"},
		ScalarColumn{Name: "collection_name", Type: "TEXT", Source: "name", Parent: "belongs_to_collection"},
		ScalarColumn{Name: "collection_poster_path", Type: "TEXT", Source: "poster_path", Parent: "belongs_to_collection"},
		ScalarColumn{Name: "collection_backdrop_path", Type: "TEXT", Source: "backdrop_path", Parent: "belongs_to_collection"},

		// flattened external_ids
		ScalarColumn{Name: "external_imdb_id", Type: "TEXT", Source: "imdb_id", Parent: "external_ids"},
		ScalarColumn{Name: "external_twitter_id", Type: "TEXT", Source: "twitter_id", Parent: "external_ids"},
		ScalarColumn{Name: "external_facebook_id", Type: "TEXT", Source: "facebook_id", Parent: "external_ids"},
		ScalarColumn{Name: "external_wikidata_id", Type: "TEXT", Source: "wikidata_id", Parent: "external_ids"},
		ScalarColumn{Name: "external_instagram_id", Type: "TEXT", Source: "instagram_id", Parent: "external_ids"},
	)
	return cols
}

// MovieChildTables is the fixed set of nested collections that get their own
// table. Adding a collection here is all it takes to extend the pipeline.
var MovieChildTables = []ChildTable{
	{
		Name:  "movie_genres",
		Field: "genres",
		Columns: []ScalarColumn{
			{Name: "genre_id", Type: "INTEGER", Source: "id"},
			{Name: "genre_name", Type: "TEXT", Source: "name"},
		},
	},
	{
		Name:  "movie_spoken_languages",
		Field: "spoken_languages",
		Columns: []ScalarColumn{
			{Name: "iso_639_1", Type: "TEXT", Source: "iso_639_1"},
			{Name: "name", Type: "TEXT", Source: "name"},
			{Name: "english_name", Type: "TEXT", Source: "english_name"},
		},
	},
	{
		Name:  "movie_origin_countries",
		Field: "origin_country",
		Columns: []ScalarColumn{
			// plain string elements, no element key
			{Name: "iso_3166_1", Type: "TEXT"},
		},
	},
	{
		Name:  "movie_production_companies",
		Field: "production_companies",
		Columns: []ScalarColumn{
			{Name: "company_id", Type: "INTEGER", Source: "id"},
			{Name: "name", Type: "TEXT", Source: "name"},
			{Name: "origin_country", Type: "TEXT", Source: "origin_country"},
			{Name: "logo_path", Type: "TEXT", Source: "logo_path"},
		},
	},
	{
		Name:  "movie_production_countries",
		Field: "production_countries",
		Columns: []ScalarColumn{
			{Name: "iso_3166_1", Type: "TEXT", Source: "iso_3166_1"},
			{Name: "name", Type: "TEXT", Source: "name"},
		},
	},
	{
		Name:   "movie_videos",
		Field:  "videos",
		Nested: "results",
		Columns: []ScalarColumn{
			{Name: "video_id", Type: "TEXT", Source: "id"},
			{Name: "key", Type: "TEXT", Source: "key"},
			{Name: "name", Type: "TEXT", Source: "name"},
			{Name: "site", Type: "TEXT", Source: "site"},
			{Name: "size", Type: "INTEGER", Source: "size"},
			{Name: "type", Type: "TEXT", Source: "type"},
			{Name: "official", Type: "INTEGER", Source: "official"},
			{Name: "published_at", Type: "TEXT", Source: "published_at"},
		},
	},
}

func createMoviesSQL(filtered bool) string {
	var build strings.Builder
	build.WriteString("CREATE TABLE " + MoviesTable + " (")
	for idx, col := range MovieColumns(filtered) {
		if idx > 0 {
			build.WriteString(", ")
		}
		build.WriteString(col.Name + " " + col.Type)
	}
	build.WriteString(")")
	return build.String()
}

func (c *ChildTable) createSQL() string {
	var build strings.Builder
	build.WriteString("CREATE TABLE " + c.Name + " (movie_id INTEGER")
	for idx := range c.Columns {
		build.WriteString(", " + c.Columns[idx].Name + " " + c.Columns[idx].Type)
	}
	build.WriteString(", FOREIGN KEY (movie_id) REFERENCES " + MoviesTable + " (id))")
	return build.String()
}

// insertSQL returns the statement head ("INSERT INTO t (a, b) VALUES ") and
// one row placeholder group ("(?,?)") for multi-row batch inserts.
func insertSQL(table string, colnames []string, orReplace bool) (string, string) {
	var build strings.Builder
	if orReplace {
		build.WriteString("INSERT OR REPLACE INTO ")
	} else {
		build.WriteString("INSERT INTO ")
	}
	build.WriteString(table + " (" + strings.Join(colnames, ", ") + ") VALUES ")

	var row strings.Builder
	row.WriteString("(")
	for idx := range colnames {
		if idx > 0 {
			row.WriteString(",")
		}
		row.WriteString("?")
	}
	row.WriteString(")")
	return build.String(), row.String()
}
