package qlearning

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Layer è un singolo strato fully-connected: matrice dei pesi
// (ingresso x uscita) e vettore dei bias (uscita).
type Layer struct {
	W *mat.Dense
	B *mat.VecDense
}

// Network è una rete feed-forward a strati fully-connected con ReLU sugli
// strati nascosti e uscita lineare (i Q-value non sono limitati). Il
// passo all'indietro è in forma chiusa per questa topologia fissa: non
// va generalizzato ad altre attivazioni senza riderivare i gradienti.
type Network struct {
	Sizes  []int
	Layers []Layer
}

// ForwardCache conserva le attivazioni e le pre-attivazioni di ogni
// strato di un forward pass, per il successivo passo all'indietro.
type ForwardCache struct {
	// Inputs[l] è l'attivazione in ingresso allo strato l
	// (Inputs[0] è il batch di input).
	Inputs []*mat.Dense
	// Pre[l] è la pre-attivazione z = x*W + b dello strato l.
	Pre []*mat.Dense
}

// NewNetwork crea una rete con strati di dimensioni sizes
// [input, hidden..., output]. I pesi sono inizializzati Glorot-uniform,
// limit = sqrt(6/(fanIn+fanOut)), i bias a zero.
func NewNetwork(sizes []int, rng *rand.Rand) *Network {
	n := &Network{
		Sizes:  append([]int(nil), sizes...),
		Layers: make([]Layer, len(sizes)-1),
	}
	for l := 0; l < len(sizes)-1; l++ {
		fanIn, fanOut := sizes[l], sizes[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		data := make([]float64, fanIn*fanOut)
		for i := range data {
			data[i] = rng.Float64()*2*limit - limit
		}
		n.Layers[l] = Layer{
			W: mat.NewDense(fanIn, fanOut, data),
			B: mat.NewVecDense(fanOut, nil),
		}
	}
	return n
}

// InputSize restituisce la dimensione del vettore di ingresso.
func (n *Network) InputSize() int { return n.Sizes[0] }

// OutputSize restituisce la dimensione del vettore di uscita.
func (n *Network) OutputSize() int { return n.Sizes[len(n.Sizes)-1] }

// Forward valuta la rete su un batch (una riga per campione). Con
// withCache=true le attivazioni intermedie vengono conservate per
// Backward; altrimenti la cache restituita è nil.
func (n *Network) Forward(x *mat.Dense, withCache bool) (*mat.Dense, *ForwardCache) {
	var cache *ForwardCache
	if withCache {
		cache = &ForwardCache{
			Inputs: make([]*mat.Dense, len(n.Layers)),
			Pre:    make([]*mat.Dense, len(n.Layers)),
		}
	}

	a := x
	for l, layer := range n.Layers {
		z := new(mat.Dense)
		z.Mul(a, layer.W)
		z.Apply(func(_, j int, v float64) float64 {
			return v + layer.B.AtVec(j)
		}, z)

		if withCache {
			cache.Inputs[l] = a
			cache.Pre[l] = z
		}

		if l == len(n.Layers)-1 {
			// Strato di uscita lineare
			a = z
		} else {
			relu := new(mat.Dense)
			relu.Apply(func(_, _ int, v float64) float64 {
				if v > 0 {
					return v
				}
				return 0
			}, z)
			a = relu
		}
	}
	return a, cache
}

// Predict valuta la rete su un singolo stato e restituisce i Q-value.
func (n *Network) Predict(state []float64) []float64 {
	out, _ := n.Forward(mat.NewDense(1, len(state), state), false)
	return mat.Row(nil, 0, out)
}

// Backward retropropaga il gradiente d'uscita attraverso le attivazioni
// in cache e applica in place l'aggiornamento a discesa del gradiente
// W -= lr*dW, b -= lr*db, strato per strato dall'uscita all'ingresso.
// Il gradiente attraversa la derivata della ReLU: passa dove la
// pre-attivazione in cache era positiva, zero altrove.
func (n *Network) Backward(outputGrad *mat.Dense, cache *ForwardCache, lr float64) {
	delta := outputGrad
	for l := len(n.Layers) - 1; l >= 0; l-- {
		layer := n.Layers[l]
		input := cache.Inputs[l]

		dW := new(mat.Dense)
		dW.Mul(input.T(), delta)

		rows, cols := delta.Dims()
		dB := mat.NewVecDense(cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dB.SetVec(j, dB.AtVec(j)+delta.At(i, j))
			}
		}

		// Propaga prima di toccare i pesi dello strato corrente
		if l > 0 {
			prev := new(mat.Dense)
			prev.Mul(delta, layer.W.T())
			pre := cache.Pre[l-1]
			prev.Apply(func(i, j int, v float64) float64 {
				if pre.At(i, j) > 0 {
					return v
				}
				return 0
			}, prev)
			delta = prev
		}

		scaled := new(mat.Dense)
		scaled.Scale(lr, dW)
		layer.W.Sub(layer.W, scaled)
		layer.B.AddScaledVec(layer.B, -lr, dB)
	}
}

// Copy restituisce una rete indipendente con identica topologia e
// parametri clonati in profondità: nessuno storage è condiviso con la
// sorgente, così la rete target può divergere da quella online tra una
// sincronizzazione e l'altra.
func (n *Network) Copy() *Network {
	c := &Network{
		Sizes:  append([]int(nil), n.Sizes...),
		Layers: make([]Layer, len(n.Layers)),
	}
	for l, layer := range n.Layers {
		c.Layers[l] = Layer{
			W: mat.DenseCopyOf(layer.W),
			B: mat.VecDenseCopyOf(layer.B),
		}
	}
	return c
}
