package distill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedOutput = `<Think> The agent is sending credentials to an unknown address. <\Think>
<Malicious_User_Request> no <\Malicious_User_Request>
<Being_Attacked> yes <\Being_Attacked>
<Harmfulness_Rating> 1.0 <\Harmfulness_Rating>`

func TestParseTeacherOutput_WellFormed(t *testing.T) {
	verdict, err := ParseTeacherOutput(wellFormedOutput)
	require.NoError(t, err)
	assert.Equal(t, "no", verdict.Malicious)
	assert.Equal(t, "yes", verdict.Attacked)
	assert.Equal(t, 1.0, verdict.Harmfulness)
	assert.Equal(t, 1.0, verdict.CompositeScore)
}

func TestParseTeacherOutput_Benign(t *testing.T) {
	out := `<Think> Routine weather lookup. <\Think>
<Malicious_User_Request> no <\Malicious_User_Request>
<Being_Attacked> no <\Being_Attacked>
<Harmfulness_Rating> 0.0 <\Harmfulness_Rating>`

	verdict, err := ParseTeacherOutput(out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, verdict.CompositeScore)
}

func TestParseTeacherOutput_CaseInsensitive(t *testing.T) {
	out := `<MALICIOUS_USER_REQUEST> YES <\MALICIOUS_USER_REQUEST>
<being_attacked> No <\being_attacked>
<Harmfulness_Rating> 0.5 <\Harmfulness_Rating>`

	verdict, err := ParseTeacherOutput(out)
	require.NoError(t, err)
	assert.Equal(t, "yes", verdict.Malicious)
	assert.Equal(t, "no", verdict.Attacked)
	assert.Equal(t, 0.5, verdict.Harmfulness)
	assert.Equal(t, 0.5, verdict.CompositeScore)
}

func TestParseTeacherOutput_MultipleBackslashClosers(t *testing.T) {
	out := `<Malicious_User_Request> no <\\Malicious_User_Request>
<Being_Attacked> no <\\\Being_Attacked>
<Harmfulness_Rating> 0.0 <\\Harmfulness_Rating>`

	_, err := ParseTeacherOutput(out)
	assert.NoError(t, err)
}

func TestParseTeacherOutput_MissingTag(t *testing.T) {
	out := `<Malicious_User_Request> no <\Malicious_User_Request>
<Harmfulness_Rating> 0.0 <\Harmfulness_Rating>`

	_, err := ParseTeacherOutput(out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestParseTeacherOutput_RatingOutsideSet(t *testing.T) {
	out := `<Malicious_User_Request> no <\Malicious_User_Request>
<Being_Attacked> no <\Being_Attacked>
<Harmfulness_Rating> 0.7 <\Harmfulness_Rating>`

	_, err := ParseTeacherOutput(out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestParseTeacherOutput_MalformedRating(t *testing.T) {
	out := `<Malicious_User_Request> no <\Malicious_User_Request>
<Being_Attacked> no <\Being_Attacked>
<Harmfulness_Rating> 1.0.0 <\Harmfulness_Rating>`

	_, err := ParseTeacherOutput(out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestParseTeacherOutput_FreeTextOnly(t *testing.T) {
	_, err := ParseTeacherOutput("I think this action is probably safe overall.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestParseTeacherOutput_SurroundingProse(t *testing.T) {
	out := "Here is my assessment:\n" + wellFormedOutput + "\nLet me know if you need more detail."
	verdict, err := ParseTeacherOutput(out)
	require.NoError(t, err)
	assert.Equal(t, 1.0, verdict.CompositeScore)
}
