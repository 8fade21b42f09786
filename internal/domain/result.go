package domain

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrUnexpectedValuesRepresentation сообщает, что транспорт вернул комбинацию
// данных, ответа и ошибки, которая не соответствует ни успеху, ни отказу.
var ErrUnexpectedValuesRepresentation = errors.New("unexpected values representation")

// UnexpectedValuesRepresentationError фиксирует, какие из трех полей
// сырого результата были заполнены.
type UnexpectedValuesRepresentationError struct {
	HasData     bool
	HasResponse bool
	HasError    bool
}

func (e *UnexpectedValuesRepresentationError) Error() string {
	return fmt.Sprintf("%s: data=%t response=%t error=%t",
		ErrUnexpectedValuesRepresentation, e.HasData, e.HasResponse, e.HasError)
}

func (e *UnexpectedValuesRepresentationError) Is(target error) bool {
	return target == ErrUnexpectedValuesRepresentation
}

// HTTPResponse описывает метаданные HTTP-ответа.
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	URL        *url.URL
}

// HTTPClientResult - результат одного сетевого запроса: либо данные вместе
// с ответом, либо ошибка. Создается только через Success или Failure.
type HTTPClientResult struct {
	data     []byte
	response *HTTPResponse
	err      error
}

// Success создает успешный результат.
func Success(data []byte, response *HTTPResponse) HTTPClientResult {
	if response == nil {
		return Failure(&UnexpectedValuesRepresentationError{HasData: data != nil})
	}
	if data == nil {
		data = []byte{}
	}
	return HTTPClientResult{data: data, response: response}
}

// Failure создает результат с ошибкой.
func Failure(err error) HTTPClientResult {
	if err == nil {
		err = &UnexpectedValuesRepresentationError{}
	}
	return HTTPClientResult{err: err}
}

func (r HTTPClientResult) Data() []byte { return r.data }

func (r HTTPClientResult) Response() *HTTPResponse { return r.response }

// Err возвращает ошибку результата. Нулевое значение HTTPClientResult
// считается отказом.
func (r HTTPClientResult) Err() error {
	if r.err == nil && r.response == nil {
		return &UnexpectedValuesRepresentationError{}
	}
	return r.err
}

// IsSuccess сообщает, содержит ли результат данные и ответ.
func (r HTTPClientResult) IsSuccess() bool { return r.Err() == nil }
