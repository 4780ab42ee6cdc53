package tooling

import (
	"context"
	"time"
)

var SumTool = Descriptor{
	Name:        "calculate_sum",
	Description: "Calculate the sum of two numbers",
	Parameters: ObjectSchema(Properties{
		"number1": Property("number", "The first number"),
		"number2": Property("number", "The second number"),
	}, "number1", "number2"),
}

type SumArguments struct {
	Number1 float64 `json:"number1"`
	Number2 float64 `json:"number2"`
}

type SumResult struct {
	Operation string    `json:"operation"`
	Operands  []float64 `json:"operands"`
	Result    float64   `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

type Calculator struct {
	Delay time.Duration
	Now   func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{Delay: 100 * time.Millisecond, Now: time.Now}
}

func (c *Calculator) Sum(ctx context.Context, args Arguments) (any, error) {
	var sumArgs SumArguments
	if err := args.Decode(&sumArgs); err != nil {
		return nil, err
	}

	if err := simulateLatency(ctx, c.Delay); err != nil {
		return nil, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	return SumResult{
		Operation: "addition",
		Operands:  []float64{sumArgs.Number1, sumArgs.Number2},
		Result:    sumArgs.Number1 + sumArgs.Number2,
		Timestamp: now().UTC(),
	}, nil
}

// RegisterDemoTools registers the weather and sum tools.
func RegisterDemoTools(registry *Registry, weather *WeatherSimulator, calculator *Calculator) error {
	if err := registry.Register(WeatherTool, weather.Handle); err != nil {
		return err
	}
	return registry.Register(SumTool, calculator.Sum)
}
