package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/cardfolio/cardfolio/internal/metrics"
)

const (
	defaultPokeAPIBaseURL = "https://pokeapi.co/api/v2"
	pokeAPITimeout        = 30 * time.Second
	pokeAPICacheTTL       = 24 * time.Hour
)

// Pokemon is the subset of the PokéAPI pokemon resource the app displays.
type Pokemon struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Height  int            `json:"height"`
	Weight  int            `json:"weight"`
	Sprites PokemonSprites `json:"sprites"`
	Types   []PokemonType  `json:"types"`
}

type PokemonSprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
}

type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// PokemonSpecies carries flavor data used to enrich card entries.
type PokemonSpecies struct {
	Name        string        `json:"name"`
	Color       NamedResource `json:"color"`
	Generation  NamedResource `json:"generation"`
	Habitat     NamedResource `json:"habitat"`
	IsLegendary bool          `json:"is_legendary"`
}

type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type resourceList struct {
	Count   int             `json:"count"`
	Results []NamedResource `json:"results"`
}

// PokeAPIClient looks up Pokémon data with client-side rate limiting and a
// TTL'd LRU cache in front of the network.
type PokeAPIClient struct {
	client       *http.Client
	baseURL      string
	limiter      *rate.Limiter
	pokemonCache *expirable.LRU[string, *Pokemon]
	speciesCache *expirable.LRU[string, *PokemonSpecies]
}

// NewPokeAPIClient builds a client against baseURL (the public API when
// empty) allowing rps requests per second with a small burst.
func NewPokeAPIClient(baseURL string, rps float64, cacheSize int) *PokeAPIClient {
	if baseURL == "" {
		baseURL = defaultPokeAPIBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}

	return &PokeAPIClient{
		client: &http.Client{
			Timeout: pokeAPITimeout,
		},
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		limiter:      rate.NewLimiter(rate.Limit(rps), 5),
		pokemonCache: expirable.NewLRU[string, *Pokemon](cacheSize, nil, pokeAPICacheTTL),
		speciesCache: expirable.NewLRU[string, *PokemonSpecies](cacheSize, nil, pokeAPICacheTTL),
	}
}

// GetPokemon fetches a pokemon by name or numeric id. A missing pokemon
// returns (nil, nil).
func (c *PokeAPIClient) GetPokemon(ctx context.Context, name string) (*Pokemon, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, nil
	}

	if cached, ok := c.pokemonCache.Get(key); ok {
		metrics.PokeAPICacheHits.Inc()
		return cached, nil
	}
	metrics.PokeAPICacheMisses.Inc()

	var pokemon Pokemon
	found, err := c.get(ctx, fmt.Sprintf("%s/pokemon/%s", c.baseURL, url.PathEscape(key)), &pokemon)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	c.pokemonCache.Add(key, &pokemon)
	return &pokemon, nil
}

// GetSpecies fetches species flavor data by name. A missing species
// returns (nil, nil).
func (c *PokeAPIClient) GetSpecies(ctx context.Context, name string) (*PokemonSpecies, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, nil
	}

	if cached, ok := c.speciesCache.Get(key); ok {
		metrics.PokeAPICacheHits.Inc()
		return cached, nil
	}
	metrics.PokeAPICacheMisses.Inc()

	var species PokemonSpecies
	found, err := c.get(ctx, fmt.Sprintf("%s/pokemon-species/%s", c.baseURL, url.PathEscape(key)), &species)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	c.speciesCache.Add(key, &species)
	return &species, nil
}

// ListPokemon returns one page of the pokemon index.
func (c *PokeAPIClient) ListPokemon(ctx context.Context, limit, offset int) ([]NamedResource, error) {
	if limit <= 0 {
		limit = 1000
	}

	var list resourceList
	found, err := c.get(ctx, fmt.Sprintf("%s/pokemon?limit=%d&offset=%d", c.baseURL, limit, offset), &list)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return list.Results, nil
}

// GetImageURL returns the default sprite URL for a pokemon, or "" when the
// pokemon or its sprite is unavailable.
func (c *PokeAPIClient) GetImageURL(ctx context.Context, name string) (string, error) {
	pokemon, err := c.GetPokemon(ctx, name)
	if err != nil || pokemon == nil {
		return "", err
	}
	return pokemon.Sprites.FrontDefault, nil
}

// get performs a rate-limited GET and decodes the body into out. It
// returns found=false on 404.
func (c *PokeAPIClient) get(ctx context.Context, reqURL string, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.PokeAPIRequestsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("fetch %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	metrics.PokeAPIRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("pokeapi returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode pokeapi response: %w", err)
	}
	return true, nil
}
