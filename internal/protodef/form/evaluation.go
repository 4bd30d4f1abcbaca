package form

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/solutions/hire-cube/internal/protodef/model"
)

const (
	ErrRecommendationMsg = "结论只能是pass/fail/maybe"
	ErrRatingMsg         = "评分需要在0~10之间"
)

var recommendations = []interface{}{
	string(model.RecommendationPass), string(model.RecommendationFail), string(model.RecommendationMaybe),
}

// EvaluationForm 提交或修改评价的表单。
type EvaluationForm struct {
	Recommendation string `json:"recommendation" form:"recommendation"`
	// Rating 总评分0~10，可不填。
	Rating    *float64 `json:"rating" form:"rating"`
	Strengths string   `json:"strengths" form:"strengths"`
	Concerns  string   `json:"concerns" form:"concerns"`
	Comments  string   `json:"comments" form:"comments"`
}

func (i *EvaluationForm) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Recommendation, validation.Required.Error(ErrRecommendationMsg), validation.In(recommendations...).Error(ErrRecommendationMsg)),
		validation.Field(&i.Strengths, validation.Length(0, 2000)),
		validation.Field(&i.Concerns, validation.Length(0, 2000)),
		validation.Field(&i.Comments, validation.Length(0, 2000)),
	)
	if err != nil {
		return err
	}
	if i.Rating != nil && (*i.Rating < 0 || *i.Rating > 10) {
		return validation.NewError("validation_rating", ErrRatingMsg)
	}
	return nil
}

func (i *EvaluationForm) Map() map[string]interface{} {
	var res map[string]interface{}
	val, _ := json.Marshal(i)
	_ = json.Unmarshal(val, &res)
	return res
}
