package tooling

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var WeatherTool = Descriptor{
	Name:        "get_current_weather",
	Description: "Get current weather information for a specified city",
	Parameters: ObjectSchema(Properties{
		"city": Property("string", "The name of the city to get weather for"),
	}, "city"),
}

type WeatherArguments struct {
	City string `json:"city"`
}

type WeatherReport struct {
	City        string    `json:"city"`
	Temperature int       `json:"temperature"`
	Condition   string    `json:"condition"`
	Humidity    int       `json:"humidity"`
	Timestamp   time.Time `json:"timestamp"`
}

var weatherConditions = []string{"Sunny", "Cloudy", "Rainy", "Snowy"}

// WeatherSimulator fabricates weather reports. Temperatures are drawn from
// [MinTemperature, MaxTemperature) and humidity from [MinHumidity, MaxHumidity).
type WeatherSimulator struct {
	MinTemperature int
	MaxTemperature int
	MinHumidity    int
	MaxHumidity    int
	Delay          time.Duration
	Now            func() time.Time

	mu   sync.Mutex
	rand *rand.Rand
}

func NewWeatherSimulator(seed uint64) *WeatherSimulator {
	return &WeatherSimulator{
		MinTemperature: -10,
		MaxTemperature: 35,
		MinHumidity:    30,
		MaxHumidity:    90,
		Delay:          500 * time.Millisecond,
		Now:            time.Now,
		rand:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (w *WeatherSimulator) Handle(ctx context.Context, args Arguments) (any, error) {
	var weatherArgs WeatherArguments
	if err := args.Decode(&weatherArgs); err != nil {
		return nil, err
	}
	city := strings.TrimSpace(weatherArgs.City)
	if city == "" {
		return nil, &ArgumentError{Field: "city", Reason: "argument city is empty"}
	}

	if err := simulateLatency(ctx, w.Delay); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return WeatherReport{
		City:        city,
		Temperature: w.between(w.MinTemperature, w.MaxTemperature),
		Condition:   weatherConditions[w.intN(len(weatherConditions))],
		Humidity:    w.between(w.MinHumidity, w.MaxHumidity),
		Timestamp:   w.now(),
	}, nil
}

func (w *WeatherSimulator) between(low, high int) int {
	if high <= low {
		return low
	}
	return low + w.intN(high-low)
}

func (w *WeatherSimulator) intN(n int) int {
	if w.rand == nil {
		return rand.IntN(n)
	}
	return w.rand.IntN(n)
}

func (w *WeatherSimulator) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

func simulateLatency(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("simulated latency interrupted: %w", ctx.Err())
	}
}
