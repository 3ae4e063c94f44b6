package predictor

// CropProfile is the typical growing condition of one crop
type CropProfile struct {
	Crop string
	Mean Sample
}

// DefaultProfiles are per-crop averages of the public crop recommendation dataset
var DefaultProfiles = []CropProfile{
	{Crop: "rice", Mean: Sample{N: 79.89, P: 47.58, K: 39.87, Temperature: 23.69, Humidity: 82.27, Ph: 6.43, Rainfall: 236.18}},
	{Crop: "maize", Mean: Sample{N: 77.76, P: 48.44, K: 19.79, Temperature: 22.39, Humidity: 65.09, Ph: 6.25, Rainfall: 84.77}},
	{Crop: "chickpea", Mean: Sample{N: 40.09, P: 67.79, K: 79.92, Temperature: 18.87, Humidity: 16.86, Ph: 7.34, Rainfall: 80.06}},
	{Crop: "kidneybeans", Mean: Sample{N: 20.75, P: 67.54, K: 20.05, Temperature: 20.12, Humidity: 21.61, Ph: 5.75, Rainfall: 105.92}},
	{Crop: "pigeonpeas", Mean: Sample{N: 20.73, P: 67.73, K: 20.29, Temperature: 27.74, Humidity: 48.06, Ph: 5.79, Rainfall: 149.46}},
	{Crop: "mothbeans", Mean: Sample{N: 21.44, P: 48.01, K: 20.23, Temperature: 28.19, Humidity: 53.16, Ph: 6.83, Rainfall: 51.20}},
	{Crop: "mungbean", Mean: Sample{N: 20.99, P: 47.28, K: 19.87, Temperature: 28.53, Humidity: 85.50, Ph: 6.72, Rainfall: 48.40}},
	{Crop: "blackgram", Mean: Sample{N: 40.02, P: 67.47, K: 19.24, Temperature: 29.97, Humidity: 65.12, Ph: 7.13, Rainfall: 67.88}},
	{Crop: "lentil", Mean: Sample{N: 18.77, P: 68.36, K: 19.41, Temperature: 24.51, Humidity: 64.80, Ph: 6.93, Rainfall: 45.68}},
	{Crop: "pomegranate", Mean: Sample{N: 18.87, P: 18.75, K: 40.21, Temperature: 21.84, Humidity: 90.13, Ph: 6.43, Rainfall: 107.53}},
	{Crop: "banana", Mean: Sample{N: 100.23, P: 82.01, K: 50.05, Temperature: 27.38, Humidity: 80.36, Ph: 5.98, Rainfall: 104.63}},
	{Crop: "mango", Mean: Sample{N: 20.07, P: 27.18, K: 29.92, Temperature: 31.21, Humidity: 50.16, Ph: 5.77, Rainfall: 94.70}},
	{Crop: "grapes", Mean: Sample{N: 23.18, P: 132.53, K: 200.11, Temperature: 23.85, Humidity: 81.88, Ph: 6.03, Rainfall: 69.61}},
	{Crop: "watermelon", Mean: Sample{N: 99.42, P: 17.00, K: 50.22, Temperature: 25.59, Humidity: 85.16, Ph: 6.50, Rainfall: 50.79}},
	{Crop: "muskmelon", Mean: Sample{N: 100.32, P: 17.72, K: 50.08, Temperature: 28.66, Humidity: 92.34, Ph: 6.36, Rainfall: 24.69}},
	{Crop: "apple", Mean: Sample{N: 20.80, P: 134.22, K: 199.89, Temperature: 22.63, Humidity: 92.33, Ph: 5.93, Rainfall: 112.65}},
	{Crop: "orange", Mean: Sample{N: 19.58, P: 16.55, K: 10.01, Temperature: 22.77, Humidity: 92.17, Ph: 7.02, Rainfall: 110.47}},
	{Crop: "papaya", Mean: Sample{N: 49.88, P: 59.05, K: 50.04, Temperature: 33.72, Humidity: 92.40, Ph: 6.74, Rainfall: 142.63}},
	{Crop: "coconut", Mean: Sample{N: 21.98, P: 16.93, K: 30.59, Temperature: 27.41, Humidity: 94.84, Ph: 5.98, Rainfall: 175.69}},
	{Crop: "cotton", Mean: Sample{N: 117.77, P: 46.24, K: 19.56, Temperature: 23.99, Humidity: 79.84, Ph: 6.91, Rainfall: 80.40}},
	{Crop: "jute", Mean: Sample{N: 78.40, P: 46.86, K: 39.99, Temperature: 24.96, Humidity: 79.64, Ph: 6.73, Rainfall: 174.79}},
	{Crop: "coffee", Mean: Sample{N: 101.20, P: 28.74, K: 29.94, Temperature: 25.54, Humidity: 58.87, Ph: 6.79, Rainfall: 158.07}},
}
