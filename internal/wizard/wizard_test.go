package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Name:      "Maria Silva",
		CPF:       "111.444.777-35",
		Email:     "maria@example.com",
		BirthDate: "1990-06-15",
		CEP:       "89200-000",
	}
}

func TestWizardHappyPath(t *testing.T) {
	w := New()
	in := validInput()
	for !w.AtLast() {
		require.NoError(t, w.Next(in))
	}
	assert.Equal(t, "review", w.Current().ID)
	require.NoError(t, w.Next(in))
	assert.True(t, w.AtLast())
}

func TestWizardBlocksForwardOnInvalidStep(t *testing.T) {
	w := New()
	in := validInput()
	in.Name = "X"
	err := w.Next(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Equal(t, "personal", w.Current().ID, "etapa não pode avançar com predicado falhando")
}

func TestWizardContactStepRejectsBadEmail(t *testing.T) {
	w := New()
	in := validInput()
	in.Email = "não-é-email"
	require.NoError(t, w.Next(in)) // personal passa
	err := w.Next(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, "contact", w.Current().ID)
}

func TestWizardPrevNeverValidates(t *testing.T) {
	w := New()
	require.NoError(t, w.Next(validInput()))
	assert.Equal(t, "contact", w.Current().ID)
	w.Prev()
	assert.Equal(t, "personal", w.Current().ID)
	w.Prev()
	assert.Equal(t, "personal", w.Current().ID)
}

func TestValidateAllReportsFirstFailingStep(t *testing.T) {
	in := validInput()
	in.CEP = "123"
	step, err := ValidateAll(in)
	require.Error(t, err)
	assert.Equal(t, "address", step)
	assert.ErrorIs(t, err, ErrInvalidCEP)

	in = validInput()
	step, err = ValidateAll(in)
	require.NoError(t, err)
	assert.Empty(t, step)
}

func TestValidateAllOptionalFields(t *testing.T) {
	// Só o nome é obrigatório; campos opcionais ausentes validam.
	step, err := ValidateAll(Input{Name: "Jo"})
	require.NoError(t, err)
	assert.Empty(t, step)

	step, err = ValidateAll(Input{Name: "Jo", CPF: "11111111111"})
	require.Error(t, err)
	assert.Equal(t, "personal", step)
	assert.ErrorIs(t, err, ErrInvalidCPF)
}
