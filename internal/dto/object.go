package dto

type UploadURLResponseDTO struct {
	UploadURL  string `json:"upload_url" example:"https://app.example/objects/uploads/6f1c2d7e-8c11-4d1f-9a61-0b9e3c0f4d2a?token=..."`
	ObjectPath string `json:"object_path" example:"/objects/uploads/6f1c2d7e-8c11-4d1f-9a61-0b9e3c0f4d2a"`
}
