package training

// LogisticRegression логистическая регрессия с L2-регуляризацией,
// обучаемая взвешенным градиентным спуском
type LogisticRegression struct {
	Epochs       int
	LearningRate float64
	L2           float64

	coef []float64
	bias float64
}

// NewLogisticRegression создает модель с параметрами по умолчанию
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		Epochs:       800,
		LearningRate: 0.2,
		L2:           0.01,
	}
}

func (lr *LogisticRegression) Kind() ModelKind { return KindLogisticRegression }

func (lr *LogisticRegression) Fit(x [][]float64, y []float64, w []float64) error {
	if err := checkTrainingSet(x, y, w); err != nil {
		return err
	}
	d := len(x[0])
	lr.coef = make([]float64, d)
	lr.bias = 0

	var wsum float64
	for _, wi := range w {
		wsum += wi
	}

	grad := make([]float64, d)
	for epoch := 0; epoch < lr.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gb float64
		for i, row := range x {
			err := (lr.predictRaw(row) - y[i]) * w[i]
			for j, v := range row {
				grad[j] += err * v
			}
			gb += err
		}
		for j := range lr.coef {
			lr.coef[j] -= lr.LearningRate * (grad[j]/wsum + lr.L2*lr.coef[j])
		}
		lr.bias -= lr.LearningRate * gb / wsum
	}
	return nil
}

func (lr *LogisticRegression) PredictProba(x []float64) float64 {
	return lr.predictRaw(x)
}

func (lr *LogisticRegression) predictRaw(x []float64) float64 {
	z := lr.bias
	for j, v := range x {
		if j < len(lr.coef) {
			z += lr.coef[j] * v
		}
	}
	return sigmoid(z)
}

// Coefficients веса признаков обученной модели
func (lr *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.coef...)
}
